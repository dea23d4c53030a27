// Package seo renders the crawler-facing plumbing: sitemap, robots
// policy and the social preview image.
package seo

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/sds-studio/sds/internal/config"
	projectdomain "github.com/sds-studio/sds/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// staticPages are the marketing routes, with their relative crawl
// priority.
var staticPages = []struct {
	Path     string
	Priority string
	Freq     string
}{
	{"/", "1.0", "weekly"},
	{"/services", "0.9", "monthly"},
	{"/tarifs", "0.9", "monthly"},
	{"/realisations", "0.8", "weekly"},
	{"/a-propos", "0.6", "monthly"},
	{"/contact", "0.8", "monthly"},
	{"/mentions-legales", "0.3", "yearly"},
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	ProjectSvc projectdomain.Service
}

type Service struct {
	log        *zap.Logger
	cfg        config.Config
	projectSvc projectdomain.Service
}

func New(p Params) *Service {
	return &Service{
		log:        p.Log.Named("seo.service"),
		cfg:        p.Cfg,
		projectSvc: p.ProjectSvc,
	}
}

var Module = fx.Module("seo.service",
	fx.Provide(New),
)

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap renders the urlset: marketing pages plus one portfolio entry
// per delivered project. A project listing failure degrades to the
// static pages rather than breaking the sitemap.
func (s *Service) Sitemap(ctx context.Context) ([]byte, error) {
	base := strings.TrimRight(s.cfg.SiteURL, "/")
	today := time.Now().UTC().Format("2006-01-02")

	set := urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, page := range staticPages {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        base + page.Path,
			LastMod:    today,
			ChangeFreq: page.Freq,
			Priority:   page.Priority,
		})
	}

	projects, _, err := s.projectSvc.List(ctx, projectdomain.ListRequest{
		PublicOnly: true,
		Limit:      500,
	})
	if err != nil {
		s.log.Warn("sitemap project listing failed", zap.Error(err))
	} else {
		for _, project := range projects {
			if project.Slug == "" {
				continue
			}
			set.URLs = append(set.URLs, urlEntry{
				Loc:        base + "/realisations/" + project.Slug,
				LastMod:    project.UpdatedAt.UTC().Format("2006-01-02"),
				ChangeFreq: "monthly",
				Priority:   "0.7",
			})
		}
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots is environment-aware: anything that is not production gets
// blocked wholesale so staging never leaks into the index.
func (s *Service) Robots() string {
	base := strings.TrimRight(s.cfg.SiteURL, "/")

	if s.cfg.Environment != "production" {
		return "User-agent: *\nDisallow: /\n"
	}

	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin\n")
	b.WriteString("Disallow: /api\n")
	b.WriteString("\n")
	for _, bot := range []string{"GPTBot", "CCBot", "AhrefsBot", "SemrushBot"} {
		fmt.Fprintf(&b, "User-agent: %s\nDisallow: /\n\n", bot)
	}
	fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", base)
	return b.String()
}

// OGImage renders the branded social preview as SVG. Text is escaped
// through the xml encoder to keep injected titles inert.
func (s *Service) OGImage(title, subtitle string) []byte {
	if strings.TrimSpace(title) == "" {
		title = "SDS Studio"
	}
	if strings.TrimSpace(subtitle) == "" {
		subtitle = "Sites web sur mesure pour independants et PME"
	}

	var escTitle, escSubtitle strings.Builder
	_ = xml.EscapeText(&escTitle, []byte(title))
	_ = xml.EscapeText(&escSubtitle, []byte(subtitle))

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="1200" height="630" viewBox="0 0 1200 630">
  <defs>
    <linearGradient id="bg" x1="0" y1="0" x2="1" y2="1">
      <stop offset="0%%" stop-color="#0f172a"/>
      <stop offset="100%%" stop-color="#1e3a5f"/>
    </linearGradient>
  </defs>
  <rect width="1200" height="630" fill="url(#bg)"/>
  <rect x="60" y="60" width="72" height="72" rx="16" fill="#38bdf8"/>
  <text x="60" y="330" font-family="Georgia, serif" font-size="64" font-weight="bold" fill="#f8fafc">%s</text>
  <text x="60" y="400" font-family="Georgia, serif" font-size="30" fill="#94a3b8">%s</text>
  <text x="60" y="560" font-family="Georgia, serif" font-size="24" fill="#38bdf8">sds.studio</text>
</svg>
`, escTitle.String(), escSubtitle.String())

	return []byte(svg)
}
