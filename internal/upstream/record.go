package upstream

import (
	"encoding/json"
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"gamehub/pkg/models"
)

// PageResponse is the listing envelope returned by the upstream API.
type PageResponse struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Record `json:"results"`
}

// Record is one game as the upstream API serializes it, both in listings
// and on the detail endpoint (the detail adds descriptions and credits).
type Record struct {
	ID              ID            `json:"id"`
	Slug            string        `json:"slug"`
	Name            string        `json:"name"`
	BackgroundImage string        `json:"background_image"`
	Released        *string       `json:"released"`
	Rating          float64       `json:"rating"`
	Platforms       []PlatformRef `json:"platforms"`
	Genres          []Named       `json:"genres"`
	Tags            []Named       `json:"tags,omitempty"`
	Description     string        `json:"description,omitempty"`
	DescriptionRaw  string        `json:"description_raw,omitempty"`
	Website         string        `json:"website,omitempty"`
	Developers      []Named       `json:"developers,omitempty"`
	Publishers      []Named       `json:"publishers,omitempty"`
	Metacritic      *int          `json:"metacritic,omitempty"`
	Playtime        int           `json:"playtime,omitempty"`
}

type Named struct {
	Name string `json:"name"`
}

// PlatformRef accepts both {"platform":{"name":...}} (listings) and
// {"name":...} (some detail payloads).
type PlatformRef struct {
	Name     string `json:"name,omitempty"`
	Platform *Named `json:"platform,omitempty"`
}

func (p PlatformRef) Label() string {
	if p.Platform != nil && strings.TrimSpace(p.Platform.Name) != "" {
		return strings.TrimSpace(p.Platform.Name)
	}
	return strings.TrimSpace(p.Name)
}

// ID is the opaque upstream identifier. Upstream sends numbers; strings
// are accepted too.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

const summaryLimit = 240

var textPolicy = bluemonday.StrictPolicy()

// blockBreaks keeps paragraph boundaries once tags are stripped.
var blockBreaks = strings.NewReplacer(
	"</p>", "</p>\n",
	"<br>", "\n",
	"<br/>", "\n",
	"<br />", "\n",
)

// plainText turns an HTML description into readable text.
func plainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(blockBreaks.Replace(s))))
}

func (r Record) description() string {
	if d := strings.TrimSpace(r.DescriptionRaw); d != "" {
		return d
	}
	return plainText(r.Description)
}

// toGame maps a record into the catalog model. It reports false when the
// record cannot be routed to (no slug and no title to derive one from).
func toGame(r Record) (models.Game, bool) {
	title := strings.TrimSpace(r.Name)
	slug := strings.TrimSpace(r.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return models.Game{}, false
	}

	g := models.Game{
		ID:        string(r.ID),
		Slug:      slug,
		Title:     title,
		PosterURL: r.BackgroundImage,
		Rating:    r.Rating,
		Platforms: make([]string, 0, len(r.Platforms)),
		Genres:    names(r.Genres),
		Tags:      names(r.Tags),
		Summary:   shorten(r.description(), summaryLimit),
	}
	if g.ID == "" {
		g.ID = slug
	}
	if r.Released != nil {
		g.ReleaseDate = strings.TrimSpace(*r.Released)
	}
	for _, p := range r.Platforms {
		if label := p.Label(); label != "" {
			g.Platforms = append(g.Platforms, label)
		}
	}
	return g, true
}

func toDetail(r Record) (models.GameDetail, bool) {
	g, ok := toGame(r)
	if !ok {
		return models.GameDetail{}, false
	}
	d := models.GameDetail{
		Game:        g,
		Description: r.description(),
		Website:     r.Website,
		Developers:  names(r.Developers),
		Publishers:  names(r.Publishers),
		Playtime:    r.Playtime,
	}
	if r.Metacritic != nil {
		d.Metacritic = *r.Metacritic
	}
	return d, true
}

// RecordFromDetail renders a detail back into the upstream wire shape, so
// a local mirror serves exactly what the client consumes.
func RecordFromDetail(d models.GameDetail) Record {
	r := Record{
		ID:              ID(d.ID),
		Slug:            d.Slug,
		Name:            d.Title,
		BackgroundImage: d.PosterURL,
		Rating:          d.Rating,
		Genres:          toNamed(d.Genres),
		Tags:            toNamed(d.Tags),
		DescriptionRaw:  d.Description,
		Website:         d.Website,
		Developers:      toNamed(d.Developers),
		Publishers:      toNamed(d.Publishers),
		Playtime:        d.Playtime,
	}
	if d.ReleaseDate != "" {
		released := d.ReleaseDate
		r.Released = &released
	}
	if d.Metacritic > 0 {
		mc := d.Metacritic
		r.Metacritic = &mc
	}
	for _, p := range d.Platforms {
		r.Platforms = append(r.Platforms, PlatformRef{Platform: &Named{Name: p}})
	}
	return r
}

// Slugify derives a routing key from a title: lowercase, letters and
// digits kept, every other run collapsed into a single dash.
func Slugify(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevDash := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteRune('-')
			prevDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func names(in []Named) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if v := strings.TrimSpace(n.Name); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toNamed(in []string) []Named {
	if len(in) == 0 {
		return nil
	}
	out := make([]Named, 0, len(in))
	for _, v := range in {
		out = append(out, Named{Name: v})
	}
	return out
}

func shorten(s string, limit int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
