// package formatter renders analysis results, track listings and playlists as text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/tally/internal/analysis"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

const barWidth = 24

// ParseFormat validates a format name. "md" is accepted for markdown and "" selects text.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, json, markdown or csv)", shared.ErrInvalidArgument, name)
	}
}

// Render encodes data in the requested format.
//
// Supported data: *analysis.Result, []analysis.ContributorCount, []models.TrackSummary and []models.Playlist.
// limit caps the rows of each tally in text and markdown output; 0 shows everything.
func Render(format Format, data any, limit int) ([]byte, error) {
	if format == FormatJSON {
		return shared.MarshalJSON(data, true)
	}

	switch v := data.(type) {
	case *analysis.Result:
		switch format {
		case FormatCSV:
			return AnalysisToCSV(v)
		case FormatMarkdown:
			return AnalysisToMarkdown(v, limit), nil
		default:
			return AnalysisToText(v, limit), nil
		}
	case []analysis.ContributorCount:
		switch format {
		case FormatCSV:
			return countsToCSV([]string{"ID", "Name", "Count"}, contributorRows(v))
		case FormatMarkdown:
			var buf bytes.Buffer
			writeMarkdownTable(&buf, "Contributors", []string{"Name", "ID", "Tracks"}, contributorTableRows(v), limit)
			return buf.Bytes(), nil
		default:
			var buf bytes.Buffer
			writeTextTally(&buf, "Contributors", contributorPairs(v), limit)
			return buf.Bytes(), nil
		}
	case []models.TrackSummary:
		switch format {
		case FormatCSV:
			return TracksToCSV(v)
		case FormatMarkdown:
			return TracksToMarkdown(v), nil
		default:
			return TracksToText(v), nil
		}
	case []models.Playlist:
		switch format {
		case FormatCSV:
			return PlaylistsToCSV(v)
		case FormatMarkdown:
			return PlaylistsToMarkdown(v), nil
		default:
			return PlaylistsToText(v), nil
		}
	default:
		return nil, fmt.Errorf("%w: cannot render %T", shared.ErrInvalidArgument, data)
	}
}

// Write renders data and writes it to w.
func Write(w io.Writer, format Format, data any, limit int) error {
	out, err := Render(format, data, limit)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

type pair struct {
	label string
	count int
}

func genrePairs(genres []analysis.GenreCount) []pair {
	pairs := make([]pair, len(genres))
	for i, g := range genres {
		pairs[i] = pair{g.Genre, g.Count}
	}
	return pairs
}

func artistPairs(artists []analysis.ArtistCount) []pair {
	pairs := make([]pair, len(artists))
	for i, a := range artists {
		pairs[i] = pair{a.Artist, a.Count}
	}
	return pairs
}

func contributorPairs(contributors []analysis.ContributorCount) []pair {
	pairs := make([]pair, len(contributors))
	for i, c := range contributors {
		pairs[i] = pair{c.Name, c.Count}
	}
	return pairs
}

func contributorRows(contributors []analysis.ContributorCount) [][]string {
	rows := make([][]string, len(contributors))
	for i, c := range contributors {
		rows[i] = []string{c.ID, c.Name, strconv.Itoa(c.Count)}
	}
	return rows
}

func contributorTableRows(contributors []analysis.ContributorCount) [][]string {
	rows := make([][]string, len(contributors))
	for i, c := range contributors {
		rows[i] = []string{c.Name, c.ID, strconv.Itoa(c.Count)}
	}
	return rows
}

// AnalysisToText renders the three tallies as styled sections with bars.
func AnalysisToText(result *analysis.Result, limit int) []byte {
	var buf bytes.Buffer
	writeTextTally(&buf, "Top Genres", genrePairs(result.Genres), limit)
	writeTextTally(&buf, "Top Artists", artistPairs(result.Artists), limit)
	writeTextTally(&buf, "Contributors", contributorPairs(result.Contributors), limit)
	return buf.Bytes()
}

func writeTextTally(buf *bytes.Buffer, title string, pairs []pair, limit int) {
	buf.WriteString(styles.Title(title) + "\n")

	if len(pairs) == 0 {
		buf.WriteString("  " + styles.Help("none") + "\n\n")
		return
	}

	shown := pairs
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	top := pairs[0].count
	for _, p := range shown {
		fmt.Fprintf(buf, "  %4d  %-32s %s\n", p.count, p.label, styles.Bar(p.count, top, barWidth))
	}
	if len(shown) < len(pairs) {
		buf.WriteString("  " + styles.Help(fmt.Sprintf("… %d more", len(pairs)-len(shown))) + "\n")
	}
	buf.WriteString("\n")
}

// AnalysisToMarkdown renders the three tallies as Markdown tables.
func AnalysisToMarkdown(result *analysis.Result, limit int) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Playlist Analysis\n\n")

	genres := make([][]string, len(result.Genres))
	for i, g := range result.Genres {
		genres[i] = []string{g.Genre, strconv.Itoa(g.Count)}
	}
	writeMarkdownTable(&buf, "Top Genres", []string{"Genre", "Tracks"}, genres, limit)

	artists := make([][]string, len(result.Artists))
	for i, a := range result.Artists {
		artists[i] = []string{a.Artist, strconv.Itoa(a.Count)}
	}
	writeMarkdownTable(&buf, "Top Artists", []string{"Artist", "Tracks"}, artists, limit)

	writeMarkdownTable(&buf, "Contributors", []string{"Name", "ID", "Tracks"}, contributorTableRows(result.Contributors), limit)
	return buf.Bytes()
}

func writeMarkdownTable(buf *bytes.Buffer, title string, headers []string, rows [][]string, limit int) {
	fmt.Fprintf(buf, "## %s\n\n", title)

	if len(rows) == 0 {
		buf.WriteString("_None._\n\n")
		return
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	buf.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	buf.WriteString("\n")
}

// AnalysisToCSV flattens the three tallies into one table with columns: Tally, Key, Name, Count
func AnalysisToCSV(result *analysis.Result) ([]byte, error) {
	var rows [][]string
	for _, g := range result.Genres {
		rows = append(rows, []string{"genre", g.Genre, g.Genre, strconv.Itoa(g.Count)})
	}
	for _, a := range result.Artists {
		rows = append(rows, []string{"artist", a.Artist, a.Artist, strconv.Itoa(a.Count)})
	}
	for _, c := range result.Contributors {
		rows = append(rows, []string{"contributor", c.ID, c.Name, strconv.Itoa(c.Count)})
	}
	return countsToCSV([]string{"Tally", "Key", "Name", "Count"}, rows)
}

func countsToCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToCSV converts track summaries to CSV with columns: Name, Artist, Album, Release Date, Spotify URL
func TracksToCSV(tracks []models.TrackSummary) ([]byte, error) {
	rows := make([][]string, len(tracks))
	for i, t := range tracks {
		rows[i] = []string{t.Name, t.Artist, t.Album, t.ReleaseDate, t.SpotifyURL}
	}
	return countsToCSV([]string{"Name", "Artist", "Album", "Release Date", "Spotify URL"}, rows)
}

// TracksToMarkdown renders a numbered track list, linking each title when a URL is known.
func TracksToMarkdown(tracks []models.TrackSummary) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Tracks\n\n")
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	for i, t := range tracks {
		title := t.Name
		if t.SpotifyURL != "" && t.SpotifyURL != "#" {
			title = fmt.Sprintf("[%s](%s)", t.Name, t.SpotifyURL)
		}
		fmt.Fprintf(&buf, "%d. %s - %s (%s, %s)\n", i+1, t.Artist, title, t.Album, t.ReleaseDate)
	}

	return buf.Bytes()
}

// TracksToText converts track summaries to plain text format
func TracksToText(tracks []models.TrackSummary) []byte {
	var buf bytes.Buffer
	buf.WriteString(styles.Title(fmt.Sprintf("Tracks: %d", len(tracks))) + "\n")

	for i, t := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s %s\n", i+1, t.Artist, t.Name, styles.Help("("+t.Album+", "+t.ReleaseDate+")"))
	}

	return buf.Bytes()
}

// PlaylistsToCSV converts playlists to CSV with columns: ID, Name, Owner, Tracks, Public, Collaborative
func PlaylistsToCSV(playlists []models.Playlist) ([]byte, error) {
	rows := make([][]string, len(playlists))
	for i, p := range playlists {
		rows[i] = []string{
			p.ID,
			p.Name,
			ownerName(p.Owner),
			strconv.Itoa(p.TrackTotal),
			strconv.FormatBool(p.Public),
			strconv.FormatBool(p.Collaborative),
		}
	}
	return countsToCSV([]string{"ID", "Name", "Owner", "Tracks", "Public", "Collaborative"}, rows)
}

// PlaylistsToMarkdown renders playlists as a Markdown table.
func PlaylistsToMarkdown(playlists []models.Playlist) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Playlists\n\n")

	rows := make([][]string, len(playlists))
	for i, p := range playlists {
		rows[i] = []string{p.Name, p.ID, ownerName(p.Owner), strconv.Itoa(p.TrackTotal), visibility(p)}
	}
	writeMarkdownTable(&buf, "Library", []string{"Name", "ID", "Owner", "Tracks", "Visibility"}, rows, 0)
	return buf.Bytes()
}

// PlaylistsToText converts playlists to plain text format
func PlaylistsToText(playlists []models.Playlist) []byte {
	var buf bytes.Buffer
	buf.WriteString(styles.Title(fmt.Sprintf("Playlists: %d", len(playlists))) + "\n")

	for _, p := range playlists {
		fmt.Fprintf(&buf, "%-24s %s %s\n", p.ID, p.Name, styles.Help(fmt.Sprintf("(%d tracks, %s)", p.TrackTotal, visibility(p))))
	}

	return buf.Bytes()
}

func ownerName(o models.Owner) string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.ID
}

func visibility(p models.Playlist) string {
	switch {
	case p.Collaborative:
		return "collaborative"
	case p.Public:
		return "public"
	default:
		return "private"
	}
}
