package endpoints

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/http/api"
	"github.com/jumpca/gridsignage/internal/redis"
)

const playerCacheTTL = 5 * time.Minute

// playerShell wraps a design's bundle into a full-screen standalone page.
// CSS and JS are injected as trusted content: designs are authored by
// admins, not end users, so the catalog is the trust boundary.
var playerShell = template.Must(template.New("player").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Name}}</title>
<style>
html, body { margin: 0; padding: 0; width: 100%; height: 100%; overflow: hidden; background: #000; }
</style>
<style>{{.CSS}}</style>
</head>
<body>
{{.HTML}}
<script>{{.JS}}</script>
</body>
</html>
`))

type playerPage struct {
	Name string
	CSS  template.CSS
	HTML template.HTML
	JS   template.JS
}

// PlayerController renders active screen designs as standalone pages.
type PlayerController struct {
	store db.Store
}

func NewPlayerController(store db.Store) *PlayerController {
	return &PlayerController{store: store}
}

// PlayerModule mounts GET /player/:slug.
func PlayerModule(store db.Store) api.Module {
	ctl := NewPlayerController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.GET("/player/:slug", ctl.renderDesign)
	})
}

// GET /player/:slug
// Inactive designs are indistinguishable from missing ones.
func (p *PlayerController) renderDesign(c *gin.Context) {
	slug := c.Param("slug")
	cacheKey := "player:" + slug

	if page, ok := redis.Get(c.Request.Context(), cacheKey); ok {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
		return
	}

	design, err := p.store.GetActiveScreenDesignBySlug(slug)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.String(http.StatusNotFound, "screen not found")
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("[player] design lookup failed")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	var buf bytes.Buffer
	err = playerShell.Execute(&buf, playerPage{
		Name: design.Name,
		CSS:  template.CSS(design.CSSCode),
		HTML: template.HTML(design.HTMLCode),
		JS:   template.JS(design.JSCode),
	})
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("[player] template execution failed")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	redis.Set(c.Request.Context(), cacheKey, buf.String(), playerCacheTTL)
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
