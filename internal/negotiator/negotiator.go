// Package negotiator asks the completion model which data a chart request needs, assembles
// that data from the store and turns the model's chart answer into configurations.
package negotiator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"maintenance-dashboard/internal/aggregate"
	"maintenance-dashboard/internal/completion"
	"maintenance-dashboard/internal/logging"
	"maintenance-dashboard/internal/models"
)

const (
	defaultRowLimit  = 200
	defaultDateStart = "2024-01-01"
	defaultDateEnd   = "2024-12-31"
)

// Store is the read side of the maintenance store used to build schemas and datasets.
type Store interface {
	CountEquipment(ctx context.Context, category int) (int, error)
	MaintenanceDateRange(ctx context.Context) (time.Time, time.Time, error)
	EquipmentByCategory(ctx context.Context, category int) ([]models.Equipment, error)
	MaintenanceHistory(ctx context.Context, equipmentIDs []string, limit int) ([]models.MaintenanceRecord, error)
	AnomalyReports(ctx context.Context, equipmentIDs []string, limit int) ([]models.AnomalyReport, error)
	ThicknessMeasurements(ctx context.Context, equipmentIDs []string, limit int) ([]models.ThicknessMeasurement, error)
	RiskAssessments(ctx context.Context, equipmentIDs []string, limit int) ([]models.RiskAssessment, error)
	TableRows(ctx context.Context, table string, equipmentIDs []string, limit int) (models.Table, error)
}

// Completer runs one completion request. *completion.Service satisfies it.
type Completer interface {
	Run(ctx context.Context, req completion.Request) (completion.Result, error)
}

type Negotiator struct {
	store     Store
	completer Completer
	catalog   Catalog
	rowLimit  int
	logger    *zap.Logger
}

type Option func(*Negotiator)

// WithRowLimit caps the rows read per table. Defaults to 200.
func WithRowLimit(limit int) Option {
	return func(n *Negotiator) {
		if limit > 0 {
			n.rowLimit = limit
		}
	}
}

func New(store Store, completer Completer, logger *zap.Logger, opts ...Option) (*Negotiator, error) {
	catalog, err := loadCatalog(catalogYAML)
	if err != nil {
		return nil, err
	}
	n := &Negotiator{
		store:     store,
		completer: completer,
		catalog:   catalog,
		rowLimit:  defaultRowLimit,
		logger:    logging.OrNop(logger).Named("negotiator"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// DataSchema is what the model sees before choosing requirements.
type DataSchema struct {
	AvailableTables map[string]TableSchema `json:"available_tables"`
	EquipmentCount  int                    `json:"equipment_count"`
	DateRange       string                 `json:"date_range"`
	Category        string                 `json:"category"`
}

// GetDataSchema combines the static catalog with the live equipment count and the span of the
// maintenance history. An empty history reports 2024-01-01 to 2024-12-31.
func (n *Negotiator) GetDataSchema(ctx context.Context, category int) (DataSchema, error) {
	schema := DataSchema{
		AvailableTables: n.catalog.byName(),
		Category:        CategoryName(category),
	}
	var first, last time.Time

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := n.store.CountEquipment(gctx, category)
		if err != nil {
			return err
		}
		schema.EquipmentCount = count
		return nil
	})
	g.Go(func() error {
		var err error
		first, last, err = n.store.MaintenanceDateRange(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return DataSchema{}, fmt.Errorf("build data schema: %w", err)
	}

	start, end := defaultDateStart, defaultDateEnd
	if !first.IsZero() {
		start = models.FormatDate(first)
	}
	if !last.IsZero() {
		end = models.FormatDate(last)
	}
	schema.DateRange = start + " to " + end
	return schema, nil
}

// AskForDataRequirements returns the model's requirements, or the keyword fallback when its
// answer is unusable. Completion failures are returned as errors.
func (n *Negotiator) AskForDataRequirements(ctx context.Context, schema DataSchema, request string) (Requirements, *completion.Usage, error) {
	result, err := n.completer.Run(ctx, completion.Request{
		Kind:   completion.KindDataRequirements,
		Prompt: request,
		Schema: schema,
	})
	if err != nil {
		return Requirements{}, nil, err
	}
	req, parseErr := ParseRequirements(result.Text, request)
	if parseErr != nil {
		n.logger.Warn("falling back to keyword requirements",
			zap.Error(parseErr),
			zap.String("response", result.Text),
		)
	}
	return req, result.Usage, nil
}

// impliedTables are read alongside an aggregation so the prompt also sees the raw rows.
var impliedTables = map[aggregate.Kind]string{
	aggregate.KindMonthlyCosts:    "maintenance_history",
	aggregate.KindEquipmentTotals: "maintenance_history",
	aggregate.KindThicknessSeries: "thickness_measurement",
	aggregate.KindRiskMatrix:      "equipment_risk_assessment",
}

// AggregateRequestedData builds the dataset for the category. Only the aggregations named in
// req are computed. Unknown tables and aggregation names are skipped.
func (n *Negotiator) AggregateRequestedData(ctx context.Context, category int, req Requirements) (*aggregate.Dataset, error) {
	equipment, err := n.store.EquipmentByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("fetch equipment for category %d: %w", category, err)
	}
	if len(equipment) == 0 {
		n.logger.Info("no equipment found for category", zap.Int("category", category))
		return aggregate.NewDataset(nil), nil
	}
	ids := make([]string, len(equipment))
	for i, eq := range equipment {
		ids[i] = eq.ID
	}
	ds := aggregate.NewDataset(equipment)

	var kinds []aggregate.Kind
	seenKind := map[aggregate.Kind]bool{}
	for _, name := range req.Aggregations {
		kind, ok := aggregate.ParseKind(name)
		if !ok {
			n.logger.Debug("ignoring unknown aggregation", zap.String("aggregation", name))
			continue
		}
		if !seenKind[kind] {
			seenKind[kind] = true
			kinds = append(kinds, kind)
		}
	}

	tables := make([]string, 0, len(req.Tables))
	seenTable := map[string]bool{"equipment": true}
	addTable := func(name string) {
		if seenTable[name] {
			return
		}
		seenTable[name] = true
		if !n.catalog.Has(name) {
			n.logger.Debug("ignoring unknown table", zap.String("table", name))
			return
		}
		tables = append(tables, name)
	}
	for _, name := range req.Tables {
		addTable(name)
	}
	for _, kind := range kinds {
		if table, ok := impliedTables[kind]; ok {
			addTable(table)
		}
	}

	for _, name := range tables {
		snapshot, err := n.store.TableRows(ctx, name, ids, n.rowLimit)
		if err != nil {
			return nil, err
		}
		ds.AddTable(snapshot)
	}

	var history []models.MaintenanceRecord
	historyLoaded := false
	loadHistory := func() ([]models.MaintenanceRecord, error) {
		if historyLoaded {
			return history, nil
		}
		var err error
		history, err = n.store.MaintenanceHistory(ctx, ids, n.rowLimit)
		historyLoaded = err == nil
		return history, err
	}

	for _, kind := range kinds {
		switch kind {
		case aggregate.KindMonthlyCosts:
			records, err := loadHistory()
			if err != nil {
				return nil, err
			}
			ds.Add(aggregate.MonthlyCostsOf(records))
		case aggregate.KindEquipmentTotals:
			records, err := loadHistory()
			if err != nil {
				return nil, err
			}
			ds.Add(aggregate.EquipmentTotalsOf(equipment, records))
		case aggregate.KindAnomalySeverity:
			reports, err := n.store.AnomalyReports(ctx, ids, n.rowLimit)
			if err != nil {
				return nil, err
			}
			ds.Add(aggregate.SeverityCountsOf(reports))
		case aggregate.KindThicknessSeries:
			readings, err := n.store.ThicknessMeasurements(ctx, ids, n.rowLimit)
			if err != nil {
				return nil, err
			}
			ds.Add(aggregate.ThicknessSeriesOf(readings))
		case aggregate.KindRiskMatrix:
			assessments, err := n.store.RiskAssessments(ctx, ids, n.rowLimit)
			if err != nil {
				return nil, err
			}
			ds.Add(aggregate.RiskMatrixOf(assessments))
		}
	}

	if req.TimeGrouping != "" {
		grouping, ok := aggregate.ParseGrouping(req.TimeGrouping)
		if !ok {
			n.logger.Debug("ignoring unknown time grouping", zap.String("time_grouping", req.TimeGrouping))
		} else {
			records, err := loadHistory()
			if err != nil {
				return nil, err
			}
			ds.Add(aggregate.TimeSeriesOf(records, grouping))
		}
	}

	n.logger.Debug("aggregated dataset",
		zap.Int("category", category),
		zap.Int("equipment", len(equipment)),
		zap.Strings("tables", tables),
		zap.Int("aggregations", len(ds.Aggregations)),
	)
	return ds, nil
}
