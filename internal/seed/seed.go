// Package seed loads the plan catalogue from YAML and upserts it.
//
// The file lists plans by name; running the seed twice is a no-op apart from
// price or interval changes, which overwrite the stored values:
//
//	plans:
//	  - name: Mensal
//	    price: "29.90"
//	    interval_months: 1
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mpsubs/pkg/logger"
	"github.com/dmitrymomot/mpsubs/pkg/subscription"
	"github.com/dmitrymomot/mpsubs/pkg/validator"
)

var (
	ErrReadCatalogue    = errors.New("seed: failed to read plan catalogue")
	ErrInvalidCatalogue = errors.New("seed: invalid plan catalogue")
	ErrUpsert           = errors.New("seed: failed to upsert plan")
)

// PlanUpserter is implemented by store.Postgres and store.Memory.
type PlanUpserter interface {
	UpsertPlan(ctx context.Context, p *subscription.Plan) error
}

type catalogue struct {
	Plans []entry `yaml:"plans"`
}

type entry struct {
	Name           string `yaml:"name"`
	Price          string `yaml:"price"`
	IntervalMonths int    `yaml:"interval_months"`
}

// Parse decodes and validates a catalogue. Unknown keys are rejected.
func Parse(r io.Reader) ([]subscription.Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c catalogue
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidCatalogue, err)
	}

	plans := make([]subscription.Plan, 0, len(c.Plans))
	seen := make(map[string]struct{}, len(c.Plans))
	var errs []error
	for i, e := range c.Plans {
		name := strings.TrimSpace(e.Name)
		cents, perr := ParseAmount(e.Price)

		field := func(f string) string { return fmt.Sprintf("plans[%d].%s", i, f) }
		err := validator.Apply(
			validator.Required(field("name"), name, "is required"),
			validator.MaxLen(field("name"), name, 100, "is longer than 100 characters"),
			validator.Positive(field("price"), cents, "must be a positive amount"),
			validator.Positive(field("interval_months"), e.IntervalMonths, "must be positive"),
		)
		if perr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field("price"), perr))
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate plan %q", field("name"), name))
			continue
		}
		seen[name] = struct{}{}

		plans = append(plans, subscription.Plan{
			Name:           name,
			Price:          subscription.BRL(cents),
			IntervalMonths: e.IntervalMonths,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(append([]error{ErrInvalidCatalogue}, errs...)...)
	}
	return plans, nil
}

// ParseAmount converts a decimal string with at most two fractional digits
// ("29.9", "29,90", "30") to centavos.
func ParseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, errors.New("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	frac += strings.Repeat("0", 2-len(frac))

	units, err := strconv.ParseUint(whole, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	cents, err := strconv.ParseUint(frac, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	amount := int64(units)*100 + int64(cents)
	if neg {
		amount = -amount
	}
	return amount, nil
}

// Apply upserts every plan and returns them with ids assigned.
func Apply(ctx context.Context, store PlanUpserter, plans []subscription.Plan, log *slog.Logger) ([]subscription.Plan, error) {
	for i := range plans {
		if err := store.UpsertPlan(ctx, &plans[i]); err != nil {
			return nil, errors.Join(ErrUpsert, fmt.Errorf("%s: %w", plans[i].Name, err))
		}
		log.InfoContext(ctx, "plan seeded",
			logger.PlanID(plans[i].ID),
			slog.String("name", plans[i].Name),
			slog.String("price", plans[i].Price.String()),
			slog.Int("interval_months", plans[i].IntervalMonths),
		)
	}
	return plans, nil
}

// File parses the catalogue at path and applies it. An empty path is a no-op.
func File(ctx context.Context, store PlanUpserter, path string, log *slog.Logger) ([]subscription.Plan, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrReadCatalogue, err)
	}
	defer f.Close()

	plans, err := Parse(f)
	if err != nil {
		return nil, err
	}
	return Apply(ctx, store, plans, log)
}
