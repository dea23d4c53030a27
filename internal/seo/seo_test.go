package seo

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/sds-studio/sds/internal/config"
	projectdomain "github.com/sds-studio/sds/internal/project/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProjectSvc struct {
	projectdomain.Service

	projects []projectdomain.Project
	err      error
}

func (s *stubProjectSvc) List(ctx context.Context, req projectdomain.ListRequest) ([]projectdomain.Project, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.projects, int64(len(s.projects)), nil
}

func newService(projects []projectdomain.Project, listErr error, environment string) *Service {
	return New(Params{
		Log: zap.NewNop(),
		Cfg: config.Config{
			SiteURL:     "https://sds.example.com",
			Environment: environment,
		},
		ProjectSvc: &stubProjectSvc{projects: projects, err: listErr},
	})
}

func TestSitemap_StaticAndProjects(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	svc := newService([]projectdomain.Project{
		{ID: node.Generate(), Slug: "projet-boutique-martin", Status: projectdomain.StatusDelivered},
		{ID: node.Generate(), Slug: "", Status: projectdomain.StatusDelivered},
	}, nil, "production")

	out, err := svc.Sitemap(context.Background())
	require.NoError(t, err)
	body := string(out)

	assert.Contains(t, body, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, body, "<loc>https://sds.example.com/</loc>")
	assert.Contains(t, body, "<loc>https://sds.example.com/tarifs</loc>")
	assert.Contains(t, body, "<loc>https://sds.example.com/realisations/projet-boutique-martin</loc>")
	assert.Equal(t, 1, strings.Count(body, "/realisations/"), "slugless projects are skipped, static listing page counted separately")
}

func TestSitemap_ListFailureDegradesToStaticPages(t *testing.T) {
	svc := newService(nil, assert.AnError, "production")

	out, err := svc.Sitemap(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(out), "<loc>https://sds.example.com/contact</loc>")
}

func TestRobots_NonProductionBlocksEverything(t *testing.T) {
	svc := newService(nil, nil, "staging")
	body := svc.Robots()
	assert.Equal(t, "User-agent: *\nDisallow: /\n", body)
}

func TestRobots_Production(t *testing.T) {
	svc := newService(nil, nil, "production")
	body := svc.Robots()

	assert.Contains(t, body, "Allow: /\n")
	assert.Contains(t, body, "Disallow: /admin\n")
	assert.Contains(t, body, "Disallow: /api\n")
	assert.Contains(t, body, "User-agent: GPTBot\nDisallow: /\n")
	assert.Contains(t, body, "Sitemap: https://sds.example.com/sitemap.xml\n")
}

func TestOGImage_EscapesInput(t *testing.T) {
	svc := newService(nil, nil, "production")

	out := string(svc.OGImage(`<script>"pwn"</script>`, ""))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Sites web sur mesure", "empty subtitle falls back to the default")
}
