package llmInteraction

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/FACorreiaa/tripwise/internal/types"
)

const (
	noIslandLabel      = "not connected to any island"
	unknownIslandLabel = "Unknown Island"
)

type IslandStore interface {
	List(ctx context.Context) ([]types.Island, error)
	SearchByName(ctx context.Context, query string) ([]types.Island, error)
	GetByIDs(ctx context.Context, ids []int64) ([]types.Island, error)
}

type EstablishmentStore interface {
	SearchApproved(ctx context.Context, query string) ([]types.Establishment, error)
	ListApprovedByIsland(ctx context.Context, islandID int64) ([]types.Establishment, error)
}

type PopularityStore interface {
	Popularity(ctx context.Context, from, to time.Time, limit int) ([]types.IslandPopularity, error)
}

// ContextAssembler turns a free-text question into the block of catalog
// facts handed to the model.
type ContextAssembler struct {
	islands        IslandStore
	establishments EstablishmentStore
	visits         PopularityStore
	now            func() time.Time
	printer        *message.Printer
}

func NewContextAssembler(islands IslandStore, establishments EstablishmentStore, visits PopularityStore) *ContextAssembler {
	return &ContextAssembler{
		islands:        islands,
		establishments: establishments,
		visits:         visits,
		now:            time.Now,
		printer:        message.NewPrinter(language.English),
	}
}

// Build renders islands, then establishments, then the popularity ranking.
// Islands fall back to the whole set when none match the query. The output
// is not truncated.
func (a *ContextAssembler) Build(ctx context.Context, query string) (string, error) {
	ctx, span := otel.Tracer("ContextAssembler").Start(ctx, "Build", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	query = strings.TrimSpace(query)

	islands, err := a.islands.SearchByName(ctx, query)
	if err != nil {
		return "", fmt.Errorf("error matching islands: %w", err)
	}
	if len(islands) == 0 {
		if islands, err = a.islands.List(ctx); err != nil {
			return "", fmt.Errorf("error listing islands: %w", err)
		}
	}

	establishments, err := a.establishments.SearchApproved(ctx, query)
	if err != nil {
		return "", fmt.Errorf("error matching establishments: %w", err)
	}
	islandNames, err := a.resolveIslandNames(ctx, establishments)
	if err != nil {
		return "", err
	}

	year := a.now().Year()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	popularity, err := a.visits.Popularity(ctx, from, to, 0)
	if err != nil {
		return "", fmt.Errorf("error ranking islands: %w", err)
	}

	span.SetAttributes(
		attribute.Int("context.islands", len(islands)),
		attribute.Int("context.establishments", len(establishments)),
		attribute.Int("context.popularity", len(popularity)),
	)

	var b strings.Builder
	if len(islands) > 0 {
		b.WriteString("Islands info (with location):\n")
		for _, i := range islands {
			fmt.Fprintf(&b, "- ID %d: %s: %s. Location: %s\n", i.ID, i.Name, i.Description, formatLocation(i))
		}
	}
	if len(establishments) > 0 {
		b.WriteString("Establishments info:\n")
		for _, e := range establishments {
			fmt.Fprintf(&b, "- %s (%s) at %s: %s\n", e.Name, e.Category(), islandLabel(e, islandNames), e.Description)
		}
	}
	if len(popularity) > 0 {
		fmt.Fprintf(&b, "\nIsland Popularity Context (Total Visits in %d):\n", year)
		for _, p := range popularity {
			fmt.Fprintf(&b, "- %s (ID %d): %s total visitors.\n", p.Name, p.IslandID, a.printer.Sprintf("%d", p.AnnualVisits))
		}
	}
	return b.String(), nil
}

func (a *ContextAssembler) resolveIslandNames(ctx context.Context, establishments []types.Establishment) (map[int64]string, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, e := range establishments {
		if e.IslandID == nil {
			continue
		}
		if _, ok := seen[*e.IslandID]; !ok {
			seen[*e.IslandID] = struct{}{}
			ids = append(ids, *e.IslandID)
		}
	}
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	islands, err := a.islands.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error resolving establishment islands: %w", err)
	}
	for _, i := range islands {
		names[i.ID] = i.Name
	}
	return names, nil
}

func islandLabel(e types.Establishment, names map[int64]string) string {
	if e.IslandID == nil {
		return noIslandLabel
	}
	if name, ok := names[*e.IslandID]; ok {
		return name
	}
	return unknownIslandLabel
}

func formatLocation(i types.Island) string {
	lat, lon, ok := i.LatLon()
	if !ok {
		return "unknown"
	}
	return "lat " + strconv.FormatFloat(lat, 'f', -1, 64) + ", lon " + strconv.FormatFloat(lon, 'f', -1, 64)
}

// TripContext describes the selected islands with their approved
// establishments for the itinerary prompt.
func (a *ContextAssembler) TripContext(ctx context.Context, islands []types.Island) (string, error) {
	var b strings.Builder
	for _, island := range islands {
		fmt.Fprintf(&b, "Island: %s\nDescription: %s\nDetails: %s\n\n", island.Name, island.Description, island.Details)
		places, err := a.establishments.ListApprovedByIsland(ctx, island.ID)
		if err != nil {
			return "", fmt.Errorf("error listing establishments for island %d: %w", island.ID, err)
		}
		if len(places) > 0 {
			b.WriteString("Places:\n")
			for _, p := range places {
				fmt.Fprintf(&b, "- %s (%s): %s\n", p.Name, p.Category(), p.Description)
			}
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
