// Package hal monta respostas no formato HAL (application/hal+json).
package hal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

const ContentType = "application/hal+json"

// Link é um link HAL
type Link struct {
	Href      string `json:"href"`
	Title     string `json:"title,omitempty"`
	Templated bool   `json:"templated,omitempty"`
}

// Links guarda os links por relação. Uma relação com um único link é
// serializada como objeto, com vários como array.
type Links struct {
	rels  map[string][]Link
	order []string
	multi map[string]bool
}

func (l *Links) ensure(rel string) {
	if l.rels == nil {
		l.rels = map[string][]Link{}
		l.multi = map[string]bool{}
	}
	if _, ok := l.rels[rel]; !ok {
		l.order = append(l.order, rel)
		l.rels[rel] = []Link{}
	}
}

// Add adiciona um link à relação
func (l *Links) Add(rel string, link Link) {
	l.ensure(rel)
	l.rels[rel] = append(l.rels[rel], link)
}

// AddMany adiciona links que sempre serão serializados como array
func (l *Links) AddMany(rel string, links ...Link) {
	l.ensure(rel)
	l.rels[rel] = append(l.rels[rel], links...)
	l.multi[rel] = true
}

// Get retorna o primeiro link da relação
func (l Links) Get(rel string) (Link, bool) {
	links := l.rels[rel]
	if len(links) == 0 {
		return Link{}, false
	}
	return links[0], true
}

// All retorna todos os links da relação
func (l Links) All(rel string) []Link {
	return l.rels[rel]
}

func (l Links) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(l.rels))
	for _, rel := range l.order {
		links := l.rels[rel]
		if len(links) == 1 && !l.multi[rel] {
			out[rel] = links[0]
			continue
		}
		out[rel] = links
	}
	return json.Marshal(out)
}

func (l *Links) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rels := make([]string, 0, len(raw))
	for rel := range raw {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		value := raw[rel]
		if len(value) > 0 && value[0] == '[' {
			var links []Link
			if err := json.Unmarshal(value, &links); err != nil {
				return fmt.Errorf("rel %s: %w", rel, err)
			}
			l.AddMany(rel, links...)
			continue
		}
		var link Link
		if err := json.Unmarshal(value, &link); err != nil {
			return fmt.Errorf("rel %s: %w", rel, err)
		}
		l.Add(rel, link)
	}
	return nil
}

// Resource combina uma entidade com seus links e recursos embutidos
type Resource struct {
	Entity   any
	Links    Links
	Embedded map[string]any
}

// NewResource cria um Resource para a entidade
func NewResource(entity any) *Resource {
	return &Resource{Entity: entity}
}

// Embed adiciona um recurso embutido
func (r *Resource) Embed(rel string, value any) *Resource {
	if r.Embedded == nil {
		r.Embedded = map[string]any{}
	}
	r.Embedded[rel] = value
	return r
}

func (r *Resource) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}

	if r.Entity != nil {
		data, err := json.Marshal(r.Entity)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("hal entity must be a JSON object: %w", err)
		}
	}

	links, err := json.Marshal(r.Links)
	if err != nil {
		return nil, err
	}
	fields["_links"] = links

	if len(r.Embedded) > 0 {
		embedded, err := json.Marshal(r.Embedded)
		if err != nil {
			return nil, err
		}
		fields["_embedded"] = embedded
	}

	return json.Marshal(fields)
}

// Linker gera hrefs absolutos a partir da requisição atual
type Linker struct {
	base string
}

// NewLinker usa os headers X-Forwarded-* quando presentes
func NewLinker(r *http.Request) Linker {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	return Linker{base: scheme + "://" + host}
}

// Href monta o href absoluto de path
func (l Linker) Href(format string, args ...any) string {
	return l.base + fmt.Sprintf(format, args...)
}

// Link monta um Link absoluto
func (l Linker) Link(format string, args ...any) Link {
	return Link{Href: l.Href(format, args...)}
}

// LinkPath monta um Link absoluto para um path já escapado
func (l Linker) LinkPath(path string) Link {
	return Link{Href: l.base + path}
}

// Render escreve v como application/hal+json
func Render(c *gin.Context, status int, v any) {
	c.Header("Content-Type", ContentType)
	c.JSON(status, v)
}
