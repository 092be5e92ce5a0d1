package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sagarc03/folio"
)

// Formatter formats results for output.
type Formatter interface {
	FormatAlbums(w io.Writer, albums []folio.Album) error
	FormatImages(w io.Writer, images []folio.Image) error
	FormatCreateAlbum(w io.Writer, result folio.CreateAlbumResult) error
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatStatus(w io.Writer, status Status) error
	FormatDebug(w io.Writer, debug folio.AlbumDebug) error
	FormatGalleryUpdate(w io.Writer, update GalleryUpdate) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

const timeLayout = "2006-01-02 15:04:05"

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatAlbums prints one row per album.
func (f *HumanFormatter) FormatAlbums(w io.Writer, albums []folio.Album) error {
	if len(albums) == 0 {
		_, _ = fmt.Fprintln(w, "No albums found")
		return nil
	}

	idLen := columnWidth(2, 40, len(albums), func(i int) string { return albums[i].ID })
	nameLen := columnWidth(4, 40, len(albums), func(i int) string { return albums[i].Name })

	_, _ = fmt.Fprintf(w, "%-*s  %-*s  %6s  %s\n", idLen, "ID", nameLen, "NAME", "IMAGES", "CREATED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n", strings.Repeat("-", idLen), strings.Repeat("-", nameLen), strings.Repeat("-", 6), strings.Repeat("-", 19))

	total := 0
	for i := range albums {
		a := &albums[i]
		total += a.ImageCount
		_, _ = fmt.Fprintf(w, "%-*s  %-*s  %6d  %s\n",
			idLen, truncate(a.ID, idLen),
			nameLen, truncate(a.Name, nameLen),
			a.ImageCount,
			formatTime(a.CreatedAt),
		)
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d album(s), %d image(s)\n", len(albums), total)
	}
	return nil
}

// FormatImages prints one row per image.
func (f *HumanFormatter) FormatImages(w io.Writer, images []folio.Image) error {
	if len(images) == 0 {
		_, _ = fmt.Fprintln(w, "No images found")
		return nil
	}

	idLen := columnWidth(2, 60, len(images), func(i int) string { return images[i].ID })

	_, _ = fmt.Fprintf(w, "%-*s  %-12s  %11s  %-6s  %s\n", idLen, "ID", "ALBUM", "SIZE", "FORMAT", "CREATED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s\n", strings.Repeat("-", idLen), strings.Repeat("-", 12), strings.Repeat("-", 11), strings.Repeat("-", 6), strings.Repeat("-", 19))

	for i := range images {
		img := &images[i]
		_, _ = fmt.Fprintf(w, "%-*s  %-12s  %11s  %-6s  %s\n",
			idLen, truncate(img.ID, idLen),
			truncate(img.Album, 12),
			fmt.Sprintf("%dx%d", img.Width, img.Height),
			img.Format,
			formatTime(img.CreatedAt),
		)
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d image(s)\n", len(images))
	}
	return nil
}

// FormatCreateAlbum reports the created album.
func (f *HumanFormatter) FormatCreateAlbum(w io.Writer, result folio.CreateAlbumResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.AlbumID)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Created album: %s\n", result.AlbumID)
	_, _ = fmt.Fprintf(w, "  Folder: %s\n", result.Folder)
	return nil
}

// FormatUpload reports each file and a summary line.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	failed := 0
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			failed++
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%dx%d, %s)\n", r.LocalPath, r.PublicID, r.Width, r.Height, formatSize(r.Size))
		}
	}

	if !f.Quiet && len(results) > 1 {
		_, _ = fmt.Fprintf(w, "\n%d uploaded, %d failed\n", len(results)-failed, failed)
	}
	return nil
}

// FormatDelete reports each deletion.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.PublicID, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.PublicID)
		}
	}
	return nil
}

// FormatStatus prints the admin status report.
func (f *HumanFormatter) FormatStatus(w io.Writer, status Status) error {
	configured := "no"
	if status.Configured {
		configured = "yes"
	}
	_, _ = fmt.Fprintf(w, "Backend:     %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Configured:  %s\n", configured)
	_, _ = fmt.Fprintf(w, "Root folder: %s\n", status.RootFolder)
	if status.CloudName != "" {
		_, _ = fmt.Fprintf(w, "Cloud name:  %s\n", status.CloudName)
	}
	return nil
}

// FormatDebug prints the album inspector output, placeholders marked.
func (f *HumanFormatter) FormatDebug(w io.Writer, debug folio.AlbumDebug) error {
	_, _ = fmt.Fprintf(w, "Album:  %s\n", debug.AlbumID)
	_, _ = fmt.Fprintf(w, "Folder: %s\n", debug.Folder)
	_, _ = fmt.Fprintf(w, "Assets: %d (%d real)\n", len(debug.AllImages), len(debug.RealImages))

	if len(debug.AllImages) == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(w)
	for i := range debug.AllImages {
		img := &debug.AllImages[i]
		marker := " "
		if img.IsPlaceholder {
			marker = "P"
		}
		tags := "-"
		if len(img.Tags) > 0 {
			tags = strings.Join(img.Tags, ",")
		}
		_, _ = fmt.Fprintf(w, "%s %s  [%s]\n", marker, img.ID, tags)
	}
	return nil
}

// FormatGalleryUpdate prints the feed once, then only changes.
func (f *HumanFormatter) FormatGalleryUpdate(w io.Writer, update GalleryUpdate) error {
	if update.Initial {
		return f.FormatImages(w, update.Images)
	}

	now := time.Now().Format("15:04:05")
	for i := range update.Added {
		_, _ = fmt.Fprintf(w, "[%s] + %s\n", now, update.Added[i].ID)
	}
	for _, id := range update.Removed {
		_, _ = fmt.Fprintf(w, "[%s] - %s\n", now, id)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, _ bool) error {
	nameLen := columnWidth(4, 20, len(profiles), func(i int) string { return profiles[i].Name })
	endpointLen := columnWidth(8, 50, len(profiles), func(i int) string { return profiles[i].Endpoint })

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", nameLen, "NAME", endpointLen, "ENDPOINT", "USERNAME")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", nameLen), strings.Repeat("-", endpointLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		username := p.Username
		if username == "" {
			username = "(not set)"
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker,
			nameLen, truncate(p.Name, nameLen),
			endpointLen, truncate(p.Endpoint, endpointLen),
			username,
		)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:         %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)

	prefix := profile.AdminPrefix
	if prefix == "" {
		prefix = DefaultAdminPrefix
	}

	_, _ = fmt.Fprintf(w, "Endpoint:     %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Admin prefix: %s\n", prefix)
	_, _ = fmt.Fprintf(w, "Username:     %s\n", orNotSet(profile.Username))
	_, _ = fmt.Fprintf(w, "Password:     %s\n", maskSecret(profile.Password, showSecrets))
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatAlbums formats albums as JSON.
func (f *JSONFormatter) FormatAlbums(w io.Writer, albums []folio.Album) error {
	return writeJSON(w, struct {
		Albums []folio.Album `json:"albums"`
	}{Albums: nonNil(albums)})
}

// FormatImages formats images as JSON.
func (f *JSONFormatter) FormatImages(w io.Writer, images []folio.Image) error {
	return writeJSON(w, struct {
		Images []folio.Image `json:"images"`
	}{Images: nonNil(images)})
}

// FormatCreateAlbum formats the create result as JSON.
func (f *JSONFormatter) FormatCreateAlbum(w io.Writer, result folio.CreateAlbumResult) error {
	return writeJSON(w, result)
}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	type jsonResult struct {
		UploadResult
		Error string `json:"error,omitempty"`
	}

	output := struct {
		Results  []jsonResult `json:"results"`
		Uploaded int          `json:"uploaded"`
		Failed   int          `json:"failed"`
	}{Results: make([]jsonResult, len(results))}

	for i := range results {
		jr := jsonResult{UploadResult: results[i]}
		if results[i].Err != nil {
			jr.Error = results[i].Err.Error()
			output.Failed++
		} else {
			output.Uploaded++
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type jsonResult struct {
		PublicID string `json:"public_id"`
		Deleted  bool   `json:"deleted"`
		Error    string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{Results: make([]jsonResult, len(results))}

	for i, r := range results {
		jr := jsonResult{PublicID: r.PublicID, Deleted: r.Deleted}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatStatus formats the status report as JSON.
func (f *JSONFormatter) FormatStatus(w io.Writer, status Status) error {
	return writeJSON(w, status)
}

// FormatDebug formats the album inspector output as JSON.
func (f *JSONFormatter) FormatDebug(w io.Writer, debug folio.AlbumDebug) error {
	return writeJSON(w, debug)
}

// FormatGalleryUpdate writes one JSON document per poll.
func (f *JSONFormatter) FormatGalleryUpdate(w io.Writer, update GalleryUpdate) error {
	enc := json.NewEncoder(w)
	return enc.Encode(struct {
		Initial bool          `json:"initial"`
		Images  []folio.Image `json:"images"`
		Added   []folio.Image `json:"added"`
		Removed []string      `json:"removed"`
	}{
		Initial: update.Initial,
		Images:  nonNil(update.Images),
		Added:   nonNil(update.Added),
		Removed: nonNil(update.Removed),
	})
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{Profiles: make([]jsonProfile, len(profiles))}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Username: p.Username,
			Password: maskSecret(p.Password, showSecrets),
			Default:  p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, struct {
		Name        string `json:"name"`
		Endpoint    string `json:"endpoint"`
		AdminPrefix string `json:"admin_prefix,omitempty"`
		Username    string `json:"username"`
		Password    string `json:"password"`
		Default     bool   `json:"default"`
	}{
		Name:        profile.Name,
		Endpoint:    profile.Endpoint,
		AdminPrefix: profile.AdminPrefix,
		Username:    profile.Username,
		Password:    maskSecret(profile.Password, showSecrets),
		Default:     isDefault,
	})
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// columnWidth is the widest of n values, clamped to [minLen, maxLen].
func columnWidth(minLen, maxLen, n int, value func(int) string) int {
	width := minLen
	for i := range n {
		width = max(width, len(value(i)))
	}
	return min(width, maxLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskSecret masks a secret string, showing only the first and last two
// characters. If showSecrets is true, returns the original value.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:2] + "..." + secret[len(secret)-2:]
}
