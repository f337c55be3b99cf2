// Package slides_tools provides MCP tools for Google Slides.
//
// Read tools expose presentation metadata and extracted slide text so that
// agents can read deck content (agendas, talking points, status decks)
// without rendering the slides themselves. Write tools create
// presentations and slides and place text boxes; they are only registered
// when the server runs with write access enabled.
package slides_tools
