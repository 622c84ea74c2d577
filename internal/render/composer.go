package render

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/skywatch/orbitrack/internal/geo"
	"github.com/skywatch/orbitrack/internal/telemetry"
	"github.com/skywatch/orbitrack/internal/track"
	"github.com/skywatch/orbitrack/pkg/logger"
)

const (
	lineWidth       = 2.0
	timeLayout      = "2006-01-02 15:04:05"
	headerText      = "Currently over:"
	unknownColor    = "#FFFFFF" // marker fallback when visibility is unknown
	defaultIcon     = "🛰"
	defaultIconSize = 28.0
	defaultDotSize  = 8.0
)

// styleOrder fixes the legend ordering
var styleOrder = []telemetry.Visibility{
	telemetry.VisibilityDaylight,
	telemetry.VisibilityVisible,
	telemetry.VisibilityEclipsed,
}

// styles is the closed line-color table. A segment whose visibility is
// not listed here gets no line layer: it stays in the segment list but
// is deliberately absent from the rendered track.
var styles = map[telemetry.Visibility]string{
	telemetry.VisibilityDaylight: "white",
	telemetry.VisibilityVisible:  "#FFFF00",
	telemetry.VisibilityEclipsed: "red",
}

// Composer builds render-ready scenes from the current sample, the
// resolved location and the segment list. Compose performs no I/O and
// its output depends only on its inputs.
type Composer struct {
	icon      string
	iconSize  float64
	insetSize float64
	logger    *logger.Logger

	// warn once per unknown visibility value so a new upstream
	// classification doesn't vanish from the map silently
	warnMu sync.Mutex
	warned map[telemetry.Visibility]bool
}

// NewComposer creates a scene composer. Zero-valued marker settings fall
// back to the defaults.
func NewComposer(icon string, iconSize, insetSize float64, log *logger.Logger) *Composer {
	if icon == "" {
		icon = defaultIcon
	}
	if iconSize <= 0 {
		iconSize = defaultIconSize
	}
	if insetSize <= 0 {
		insetSize = defaultDotSize
	}
	return &Composer{
		icon:      icon,
		iconSize:  iconSize,
		insetSize: insetSize,
		logger:    log.Named("render-composer"),
		warned:    make(map[telemetry.Visibility]bool),
	}
}

// Compose builds a fresh Scene for one tick
func (c *Composer) Compose(current telemetry.Sample, loc geo.ResolvedLocation, segments []track.Segment, now time.Time) *Scene {
	scene := &Scene{
		LineLayers:  make([]LineLayer, 0, len(segments)),
		ComposedAt:  now.UTC().Format(time.RFC3339),
		MainMarker:  c.mainMarker(current),
		InsetMarker: c.insetMarker(current),
		Annotations: Annotations{
			TimeText:     now.UTC().Format(timeLayout) + " UTC",
			HeaderText:   headerText,
			LocationText: loc.Label,
			LegendText:   legendText(),
		},
	}

	for _, seg := range segments {
		color, ok := styles[seg.Visibility]
		if !ok {
			c.warnUnknown(seg.Visibility)
			continue
		}

		line := make(orb.LineString, 0, len(seg.Samples))
		for _, s := range seg.Samples {
			line = append(line, orb.Point{s.Longitude, s.Latitude})
		}

		scene.LineLayers = append(scene.LineLayers, LineLayer{
			Geometry:   line,
			Color:      color,
			Width:      lineWidth,
			Visibility: seg.Visibility,
		})
	}

	return scene
}

func (c *Composer) mainMarker(current telemetry.Sample) Marker {
	return Marker{
		Position: orb.Point{current.Longitude, current.Latitude},
		Icon:     c.icon,
		Size:     c.iconSize,
	}
}

func (c *Composer) insetMarker(current telemetry.Sample) Marker {
	color, ok := styles[current.Visibility]
	if !ok {
		color = unknownColor
	}
	return Marker{
		Position: orb.Point{current.Longitude, current.Latitude},
		Color:    color,
		Size:     c.insetSize,
	}
}

func (c *Composer) warnUnknown(vis telemetry.Visibility) {
	c.warnMu.Lock()
	defer c.warnMu.Unlock()
	if c.warned[vis] {
		return
	}
	c.warned[vis] = true
	c.logger.Warn("Segment with unstyled visibility dropped from line layers",
		logger.String("visibility", string(vis)))
}

// legendText builds the static three-line visibility legend
func legendText() string {
	var b strings.Builder
	b.WriteString("Visibility")
	for _, vis := range styleOrder {
		b.WriteString(fmt.Sprintf("\n━ %s (%s)", vis, styles[vis]))
	}
	return b.String()
}

// StyleColors returns a copy of the line-color table, keyed by
// visibility name. Used by the config API so the UI can mirror the
// legend colors.
func StyleColors() map[string]string {
	out := make(map[string]string, len(styles))
	for vis, color := range styles {
		out[string(vis)] = color
	}
	return out
}
