package forecast

import (
	"context"
	"errors"
	"fmt"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
)

// ErrNoBOM is returned when no bill-of-materials line consumes a material;
// the engine records a diagnostic and skips the material.
var ErrNoBOM = errors.New("material has no bill-of-materials line")

// DemandContext is everything one material's forecast needs from a demand
// source: its consumption history, the BOM ratio, and the production
// baseline. BaselineOutput x BOMQuantityPerUnit is the expected daily usage.
type DemandContext struct {
	Series             []DailyPoint
	BOMQuantityPerUnit float64
	BaselineOutput     float64
	BOMLines           []domain.BOMLine
}

// DemandSource supplies the demand context for a material. Stocked
// production, made-to-order production, and the combined view implement it
// once so the estimator, calculator, classifier and projector are shared.
type DemandSource interface {
	Name() string
	Load(ctx context.Context, material domain.Material, window HistoryWindow) (DemandContext, error)
}

// StockedSource derives demand from the batch production line: fixed daily
// output of resolved stocked products, consumption history from the
// daily-output log.
type StockedSource struct {
	products    repository.ProductRepository
	bom         repository.BOMRepository
	consumption repository.ConsumptionRepository

	// productQuery optionally pins the stocked product by code or name;
	// empty means every product flagged as stocked.
	productQuery string

	aggregator Aggregator
}

// NewStockedSource builds the stocked-production demand source.
func NewStockedSource(products repository.ProductRepository, bom repository.BOMRepository, consumption repository.ConsumptionRepository, productQuery string) *StockedSource {
	return &StockedSource{
		products:     products,
		bom:          bom,
		consumption:  consumption,
		productQuery: productQuery,
	}
}

func (s *StockedSource) Name() string { return "stocked" }

func (s *StockedSource) Load(ctx context.Context, material domain.Material, window HistoryWindow) (DemandContext, error) {
	products, err := s.stockedProducts(ctx)
	if err != nil {
		return DemandContext{}, err
	}

	dc, err := bomContext(ctx, s.bom, material, products, productBaseline)
	if err != nil {
		return DemandContext{}, err
	}

	events, err := s.consumption.StockedOutputEvents(ctx, material.ID, window.From, window.To)
	if err != nil {
		return DemandContext{}, fmt.Errorf("loading stocked output events for material %d: %w", material.ID, err)
	}

	dc.Series = ClampToWindow(s.aggregator.Aggregate(events, nil, dc.BOMQuantityPerUnit), window)

	return dc, nil
}

func (s *StockedSource) stockedProducts(ctx context.Context) ([]domain.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	if s.productQuery != "" {
		p, ok := ResolveStockedProduct(all, s.productQuery)
		if !ok {
			return nil, fmt.Errorf("stocked product %q not found", s.productQuery)
		}
		return []domain.Product{p}, nil
	}

	stocked := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.Stocked {
			stocked = append(stocked, p)
		}
	}
	return stocked, nil
}

// MadeToOrderSource derives demand from accepted customer orders: baseline
// output is the average ordered units per day over the history window, and
// consumption history comes from the transaction ledger written by order
// fulfillment.
type MadeToOrderSource struct {
	products    repository.ProductRepository
	bom         repository.BOMRepository
	consumption repository.ConsumptionRepository
	orders      repository.OrderRepository

	aggregator Aggregator
}

// NewMadeToOrderSource builds the made-to-order demand source.
func NewMadeToOrderSource(products repository.ProductRepository, bom repository.BOMRepository, consumption repository.ConsumptionRepository, orders repository.OrderRepository) *MadeToOrderSource {
	return &MadeToOrderSource{
		products:    products,
		bom:         bom,
		consumption: consumption,
		orders:      orders,
	}
}

func (s *MadeToOrderSource) Name() string { return "made_to_order" }

func (s *MadeToOrderSource) Load(ctx context.Context, material domain.Material, window HistoryWindow) (DemandContext, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return DemandContext{}, fmt.Errorf("listing products: %w", err)
	}
	custom := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if !p.Stocked {
			custom = append(custom, p)
		}
	}

	windowDays := window.To.Sub(window.From).Hours() / 24
	if windowDays <= 0 {
		windowDays = 1
	}

	baseline := func(ctx context.Context, p domain.Product) (float64, error) {
		lines, err := s.orders.AcceptedLines(ctx, p.ID, window.From, window.To)
		if err != nil {
			return 0, fmt.Errorf("loading order lines for product %d: %w", p.ID, err)
		}
		var units float64
		for _, l := range lines {
			units += l.Quantity
		}
		return units / windowDays, nil
	}

	dc, err := bomContext(ctx, s.bom, material, custom, baseline)
	if err != nil {
		return DemandContext{}, err
	}

	events, err := s.consumption.LedgerEvents(ctx, material.ID, window.From, window.To)
	if err != nil {
		return DemandContext{}, fmt.Errorf("loading ledger events for material %d: %w", material.ID, err)
	}

	dc.Series = ClampToWindow(s.aggregator.Aggregate(nil, events, dc.BOMQuantityPerUnit), window)

	return dc, nil
}

// CombinedSource merges the stocked and made-to-order views: baselines add
// up and the consumption series merges both raw sources day by day. It is
// the engine's default.
type CombinedSource struct {
	stocked     *StockedSource
	madeToOrder *MadeToOrderSource
	consumption repository.ConsumptionRepository

	aggregator Aggregator
}

// NewCombinedSource builds the combined demand source.
func NewCombinedSource(stocked *StockedSource, madeToOrder *MadeToOrderSource, consumption repository.ConsumptionRepository) *CombinedSource {
	return &CombinedSource{
		stocked:     stocked,
		madeToOrder: madeToOrder,
		consumption: consumption,
	}
}

func (s *CombinedSource) Name() string { return "combined" }

func (s *CombinedSource) Load(ctx context.Context, material domain.Material, window HistoryWindow) (DemandContext, error) {
	stockedCtx, stockedErr := s.stocked.Load(ctx, material, window)
	orderCtx, orderErr := s.madeToOrder.Load(ctx, material, window)

	// A material consumed by only one production mode is fine; it is an
	// error only when neither mode knows it.
	if stockedErr != nil && orderErr != nil {
		if errors.Is(stockedErr, ErrNoBOM) && errors.Is(orderErr, ErrNoBOM) {
			return DemandContext{}, ErrNoBOM
		}
		if !errors.Is(stockedErr, ErrNoBOM) {
			return DemandContext{}, stockedErr
		}
		return DemandContext{}, orderErr
	}
	if stockedErr != nil && !errors.Is(stockedErr, ErrNoBOM) {
		return DemandContext{}, stockedErr
	}
	if orderErr != nil && !errors.Is(orderErr, ErrNoBOM) {
		return DemandContext{}, orderErr
	}

	dc := DemandContext{
		// Baselines fold into a single expected-usage figure; the combined
		// ratio is folded in, so the multiplier is 1.
		BOMQuantityPerUnit: 1,
		BaselineOutput:     expectedUsage(stockedCtx) + expectedUsage(orderCtx),
		BOMLines:           append(append([]domain.BOMLine{}, stockedCtx.BOMLines...), orderCtx.BOMLines...),
	}

	stockedEvents, err := s.consumption.StockedOutputEvents(ctx, material.ID, window.From, window.To)
	if err != nil {
		return DemandContext{}, fmt.Errorf("loading stocked output events for material %d: %w", material.ID, err)
	}
	ledgerEvents, err := s.consumption.LedgerEvents(ctx, material.ID, window.From, window.To)
	if err != nil {
		return DemandContext{}, fmt.Errorf("loading ledger events for material %d: %w", material.ID, err)
	}

	perUnit := stockedCtx.BOMQuantityPerUnit
	if perUnit == 0 {
		perUnit = orderCtx.BOMQuantityPerUnit
	}
	dc.Series = ClampToWindow(s.aggregator.Aggregate(stockedEvents, ledgerEvents, perUnit), window)

	return dc, nil
}

func expectedUsage(dc DemandContext) float64 {
	return dc.BaselineOutput * dc.BOMQuantityPerUnit
}

// bomContext resolves the BOM lines joining a material to the given
// products and folds per-product baselines into a single context. With one
// consuming product the raw figures are kept; with several, the expected
// usages sum under a unit multiplier.
func bomContext(ctx context.Context, bomRepo repository.BOMRepository, material domain.Material, products []domain.Product, baseline func(context.Context, domain.Product) (float64, error)) (DemandContext, error) {
	lines, err := bomRepo.LinesForMaterial(ctx, material.ID)
	if err != nil {
		return DemandContext{}, fmt.Errorf("loading BOM for material %d: %w", material.ID, err)
	}

	byProduct := make(map[int64]domain.BOMLine, len(lines))
	for _, line := range lines {
		byProduct[line.ProductID] = line
	}

	var (
		matched  []domain.BOMLine
		expected float64
		lastQty  float64
		lastBase float64
	)
	for _, p := range products {
		line, ok := byProduct[p.ID]
		if !ok {
			continue
		}
		base, err := baseline(ctx, p)
		if err != nil {
			return DemandContext{}, err
		}
		matched = append(matched, line)
		expected += base * line.QuantityPerUnit
		lastQty = line.QuantityPerUnit
		lastBase = base
	}

	if len(matched) == 0 {
		return DemandContext{}, ErrNoBOM
	}

	dc := DemandContext{BOMLines: matched}
	if len(matched) == 1 {
		dc.BOMQuantityPerUnit = lastQty
		dc.BaselineOutput = lastBase
	} else {
		dc.BOMQuantityPerUnit = 1
		dc.BaselineOutput = expected
	}

	return dc, nil
}

func productBaseline(_ context.Context, p domain.Product) (float64, error) {
	return p.DailyOutput, nil
}
