package web

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// RoomsPage lists the live rooms for operators.
func RoomsPage(rows []RoomRow) templ.Component {
	return roomsPage(rows, time.Now().UTC())
}

func roomsPage(rows []RoomRow, renderedAt time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Balance Scale rooms</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <h1>Live rooms</h1>
        <p>Rendered `)
		b.WriteString(templ.EscapeString(formatTime(renderedAt)))
		b.WriteString(` UTC</p>
      </header>
`)
		if len(rows) == 0 {
			b.WriteString(`      <p class="empty">No active rooms.</p>
`)
		} else {
			b.WriteString(`      <table class="rooms">
        <thead><tr><th>Code</th><th>Status</th><th>Players</th><th>Active</th><th>Round</th></tr></thead>
        <tbody>
`)
			for _, row := range rows {
				b.WriteString(`          <tr><td>`)
				b.WriteString(templ.EscapeString(row.Code))
				b.WriteString(`</td><td>`)
				b.WriteString(templ.EscapeString(row.Status))
				b.WriteString(`</td><td>`)
				b.WriteString(strconv.Itoa(row.Players))
				b.WriteString(`</td><td>`)
				b.WriteString(strconv.Itoa(row.Active))
				b.WriteString(`</td><td>`)
				b.WriteString(strconv.Itoa(row.Round))
				b.WriteString("</td></tr>\n")
			}
			b.WriteString(`        </tbody>
      </table>
`)
		}
		b.WriteString(`    </main>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
