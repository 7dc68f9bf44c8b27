package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - initial tables
// 1 - indexes on brews(date), brews(recipe_id) and stages(recipe_id)
const currentSchemaVersion = 1

// Compile-time interface check.
var _ domain.Store = (*SQLStore)(nil)

// SQLStore persists the catalog in a SQLite database. Sessions are not
// stored here; they live in a MemoryStore for the lifetime of the process.
type SQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenSQL creates or opens a SQLite database at path and brings its
// schema up to date. The connection runs in WAL mode with foreign keys
// enforced and a single writer.
func OpenSQL(path string, log *logger.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	log.Debug("opened sqlite store at %s (schema v%d)", path, currentSchemaVersion)
	return &SQLStore{db: db, log: log}, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("executing %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return runMigrations(db)
}

func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("setting user_version: %w", err)
	}
	return nil
}

func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_brews_date ON brews(date);
		CREATE INDEX IF NOT EXISTS idx_brews_recipe ON brews(recipe_id);
		CREATE INDEX IF NOT EXISTS idx_stages_recipe ON stages(recipe_id, order_index);
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// Times are stored as unix nanoseconds; 0 is the zero time.
func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return domain.IntPtr(int(v.Int64))
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return domain.FloatPtr(v.Float64)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// notFound maps sql.ErrNoRows to domain.ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", what, id, domain.ErrNotFound)
	}
	return fmt.Errorf("loading %s %q: %w", what, id, err)
}

// deleted reports ErrNotFound when a delete touched no rows.
func deleted(res sql.Result, err error, what, id string) error {
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", what, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", what, id, domain.ErrNotFound)
	}
	return nil
}

// SaveRecipe upserts the recipe row and replaces its stages in one
// transaction. Links to unknown roasters or grinders are stored as NULL.
func (s *SQLStore) SaveRecipe(ctx context.Context, r *domain.Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving recipe: %w", err)
	}
	defer tx.Rollback()

	// ON CONFLICT DO UPDATE keeps the row, so brews linked to it survive.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO recipes
		(id, name, grams, ratio, water, temperature, grind_size, roaster_id, grinder_id, created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?,
			(SELECT id FROM roasters WHERE id = ?),
			(SELECT id FROM grinders WHERE id = ?),
			?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			grams = excluded.grams,
			ratio = excluded.ratio,
			water = excluded.water,
			temperature = excluded.temperature,
			grind_size = excluded.grind_size,
			roaster_id = excluded.roaster_id,
			grinder_id = excluded.grinder_id,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			version = excluded.version
	`,
		r.ID, r.Name, r.Grams, r.Ratio, r.WaterAmount, r.Temperature, r.GrindSize,
		r.RoasterID, r.GrinderID,
		toNanos(r.CreatedAt), toNanos(r.UpdatedAt), r.Version,
	)
	if err != nil {
		return fmt.Errorf("saving recipe %q: %w", r.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM stages WHERE recipe_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clearing stages of %q: %w", r.ID, err)
	}
	for _, st := range r.Stages {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stages (id, recipe_id, type, order_index, seconds, water)
			VALUES (?, ?, ?, ?, ?, ?)
		`, st.ID, r.ID, st.Type.String(), st.OrderIndex, st.Seconds, st.WaterAmount)
		if err != nil {
			return fmt.Errorf("saving stage %q: %w", st.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving recipe %q: %w", r.ID, err)
	}
	s.log.Debug("saved recipe %s (%d stages)", r.ID, len(r.Stages))
	return nil
}

// GetRecipe loads a recipe with its stages.
func (s *SQLStore) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	var (
		r                domain.Recipe
		roaster, grinder sql.NullString
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, grams, ratio, water, temperature, grind_size, roaster_id, grinder_id, created_at, updated_at, version
		FROM recipes WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &r.Grams, &r.Ratio, &r.WaterAmount, &r.Temperature, &r.GrindSize,
		&roaster, &grinder, &created, &updated, &r.Version)
	if err != nil {
		return nil, notFound(err, "recipe", id)
	}
	r.RoasterID = roaster.String
	r.GrinderID = grinder.String
	r.CreatedAt = fromNanos(created)
	r.UpdatedAt = fromNanos(updated)

	r.Stages, err = s.stages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRecipes returns recipe summaries sorted by name.
func (s *SQLStore) ListRecipes(ctx context.Context) ([]domain.RecipeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.grams, r.ratio, r.water, COUNT(st.id)
		FROM recipes r LEFT JOIN stages st ON st.recipe_id = r.id
		GROUP BY r.id
		ORDER BY r.name, r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	defer rows.Close()

	var out []domain.RecipeSummary
	for rows.Next() {
		var sum domain.RecipeSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Grams, &sum.Ratio, &sum.WaterAmount, &sum.StageCount); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteRecipe removes a recipe; its stages cascade and linked brews lose
// their origin.
func (s *SQLStore) DeleteRecipe(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	return deleted(res, err, "recipe", id)
}

// StagesForRecipe returns the recipe's stages ordered by OrderIndex.
func (s *SQLStore) StagesForRecipe(ctx context.Context, recipeID string) ([]domain.Stage, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM recipes WHERE id = ?`, recipeID).Scan(&exists)
	if err != nil {
		return nil, notFound(err, "recipe", recipeID)
	}
	return s.stages(ctx, recipeID)
}

func (s *SQLStore) stages(ctx context.Context, recipeID string) ([]domain.Stage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, order_index, seconds, water
		FROM stages WHERE recipe_id = ?
		ORDER BY order_index
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("loading stages of %q: %w", recipeID, err)
	}
	defer rows.Close()

	var out []domain.Stage
	for rows.Next() {
		var (
			st  domain.Stage
			typ string
		)
		if err := rows.Scan(&st.ID, &typ, &st.OrderIndex, &st.Seconds, &st.WaterAmount); err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}
		t, ok := domain.StageTypeFromString(typ)
		if !ok {
			return nil, fmt.Errorf("stage %q: unknown type %q", st.ID, typ)
		}
		st.Type = t
		out = append(out, st)
	}
	return out, rows.Err()
}

// SaveRoaster inserts or replaces a roaster.
func (s *SQLStore) SaveRoaster(ctx context.Context, r *domain.Roaster) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roasters (id, name, country, website, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			country = excluded.country,
			website = excluded.website,
			created_at = excluded.created_at
	`, r.ID, r.Name, r.Country, r.Website, toNanos(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving roaster %q: %w", r.ID, err)
	}
	return nil
}

// GetRoaster loads a roaster.
func (s *SQLStore) GetRoaster(ctx context.Context, id string) (*domain.Roaster, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, country, website, created_at FROM roasters WHERE id = ?
	`, id)
	r, err := scanRoaster(row)
	if err != nil {
		return nil, notFound(err, "roaster", id)
	}
	return r, nil
}

// ListRoasters returns roasters sorted by name, then id.
func (s *SQLStore) ListRoasters(ctx context.Context) ([]*domain.Roaster, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, country, website, created_at FROM roasters ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing roasters: %w", err)
	}
	defer rows.Close()

	var out []*domain.Roaster
	for rows.Next() {
		r, err := scanRoaster(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning roaster: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRoaster removes a roaster; recipes pointing at it are unlinked.
func (s *SQLStore) DeleteRoaster(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roasters WHERE id = ?`, id)
	return deleted(res, err, "roaster", id)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRoaster(sc scanner) (*domain.Roaster, error) {
	var (
		r       domain.Roaster
		created int64
	)
	if err := sc.Scan(&r.ID, &r.Name, &r.Country, &r.Website, &created); err != nil {
		return nil, err
	}
	r.CreatedAt = fromNanos(created)
	return &r, nil
}

// SaveGrinder inserts or replaces a grinder.
func (s *SQLStore) SaveGrinder(ctx context.Context, g *domain.Grinder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO grinders (id, name, grinder_type, burr_type, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			grinder_type = excluded.grinder_type,
			burr_type = excluded.burr_type,
			notes = excluded.notes,
			created_at = excluded.created_at
	`, g.ID, g.Name, g.GrinderType, g.BurrType, g.Notes, toNanos(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving grinder %q: %w", g.ID, err)
	}
	return nil
}

// GetGrinder loads a grinder.
func (s *SQLStore) GetGrinder(ctx context.Context, id string) (*domain.Grinder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, grinder_type, burr_type, notes, created_at FROM grinders WHERE id = ?
	`, id)
	g, err := scanGrinder(row)
	if err != nil {
		return nil, notFound(err, "grinder", id)
	}
	return g, nil
}

// ListGrinders returns grinders sorted by name, then id.
func (s *SQLStore) ListGrinders(ctx context.Context) ([]*domain.Grinder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, grinder_type, burr_type, notes, created_at FROM grinders ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing grinders: %w", err)
	}
	defer rows.Close()

	var out []*domain.Grinder
	for rows.Next() {
		g, err := scanGrinder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning grinder: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteGrinder removes a grinder; recipes pointing at it are unlinked.
func (s *SQLStore) DeleteGrinder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM grinders WHERE id = ?`, id)
	return deleted(res, err, "grinder", id)
}

func scanGrinder(sc scanner) (*domain.Grinder, error) {
	var (
		g       domain.Grinder
		created int64
	)
	if err := sc.Scan(&g.ID, &g.Name, &g.GrinderType, &g.BurrType, &g.Notes, &created); err != nil {
		return nil, err
	}
	g.CreatedAt = fromNanos(created)
	return &g, nil
}

// SaveBrew records a new brew. An existing id is rejected with
// ErrAlreadyExists. A link to an unknown recipe is stored as NULL.
func (s *SQLStore) SaveBrew(ctx context.Context, b *domain.Brew) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO brews
		(id, recipe_id, recipe_name, grams, water, ratio, temperature, grind_size, roaster_name, grinder_name,
		 rating, acidity, bitterness, body, sweetness, tds, date, duration_seconds, notes)
		VALUES (?, (SELECT id FROM recipes WHERE id = ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		b.ID, b.RecipeID(), b.RecipeName, b.Grams, b.Water, b.Ratio, b.Temperature, b.GrindSize,
		b.RoasterName, b.GrinderName,
		b.Rating, nullInt(b.Acidity), nullInt(b.Bitterness), nullInt(b.Body), nullInt(b.Sweetness), nullFloat(b.TDS),
		toNanos(b.Date), b.ActualDurationSeconds, b.Notes,
	)
	if err != nil {
		return fmt.Errorf("saving brew %q: %w", b.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving brew %q: %w", b.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("brew %q: %w", b.ID, domain.ErrAlreadyExists)
	}
	return nil
}

// brewSelect joins each brew with its recipe and the recipe's roaster so
// the origin link can be rebuilt.
const brewSelect = `
	SELECT b.id, b.recipe_name, b.grams, b.water, b.ratio, b.temperature, b.grind_size,
	       b.roaster_name, b.grinder_name, b.rating, b.acidity, b.bitterness, b.body, b.sweetness,
	       b.tds, b.date, b.duration_seconds, b.notes,
	       r.id, ro.id, ro.name, ro.country, ro.website, ro.created_at
	FROM brews b
	LEFT JOIN recipes r ON r.id = b.recipe_id
	LEFT JOIN roasters ro ON ro.id = r.roaster_id
`

func scanBrew(sc scanner) (*domain.Brew, error) {
	var (
		b                                domain.Brew
		acidity, bitterness, body, sweet sql.NullInt64
		tds                              sql.NullFloat64
		date                             int64
		recipeID, roasterID, roasterName sql.NullString
		roasterCountry, roasterWebsite   sql.NullString
		roasterCreated                   sql.NullInt64
	)
	err := sc.Scan(&b.ID, &b.RecipeName, &b.Grams, &b.Water, &b.Ratio, &b.Temperature, &b.GrindSize,
		&b.RoasterName, &b.GrinderName, &b.Rating, &acidity, &bitterness, &body, &sweet,
		&tds, &date, &b.ActualDurationSeconds, &b.Notes,
		&recipeID, &roasterID, &roasterName, &roasterCountry, &roasterWebsite, &roasterCreated)
	if err != nil {
		return nil, err
	}
	b.Acidity = intPtr(acidity)
	b.Bitterness = intPtr(bitterness)
	b.Body = intPtr(body)
	b.Sweetness = intPtr(sweet)
	b.TDS = floatPtr(tds)
	b.Date = fromNanos(date)

	if recipeID.Valid {
		b.Origin = &domain.BrewOrigin{RecipeID: recipeID.String}
		if roasterID.Valid {
			b.Origin.Roaster = &domain.Roaster{
				ID:        roasterID.String,
				Name:      roasterName.String,
				Country:   roasterCountry.String,
				Website:   roasterWebsite.String,
				CreatedAt: fromNanos(roasterCreated.Int64),
			}
		}
	}
	return &b, nil
}

// GetBrew loads a brew with its origin resolved.
func (s *SQLStore) GetBrew(ctx context.Context, id string) (*domain.Brew, error) {
	b, err := scanBrew(s.db.QueryRowContext(ctx, brewSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return nil, notFound(err, "brew", id)
	}
	return b, nil
}

// ListBrews returns matching brews, oldest first.
func (s *SQLStore) ListBrews(ctx context.Context, q domain.BrewQuery) ([]*domain.Brew, error) {
	var (
		where []string
		args  []any
	)
	if !q.Since.IsZero() {
		where = append(where, "b.date >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		where = append(where, "b.date < ?")
		args = append(args, q.Until.UnixNano())
	}
	if q.RecipeID != "" {
		where = append(where, "r.id = ?")
		args = append(args, q.RecipeID)
	}
	if q.MinRating > 0 {
		where = append(where, "b.rating >= ?")
		args = append(args, q.MinRating)
	}

	query := brewSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY b.date, b.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing brews: %w", err)
	}
	defer rows.Close()

	var out []*domain.Brew
	for rows.Next() {
		b, err := scanBrew(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning brew: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBrewReview changes a brew's rating and notes.
func (s *SQLStore) UpdateBrewReview(ctx context.Context, id string, rating int, notes string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE brews SET rating = ?, notes = ? WHERE id = ?`, rating, notes, id)
	if err != nil {
		return fmt.Errorf("updating brew %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating brew %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("brew %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteBrew removes a brew.
func (s *SQLStore) DeleteBrew(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM brews WHERE id = ?`, id)
	return deleted(res, err, "brew", id)
}

// SaveChart inserts or replaces a chart configuration. The chart type is
// never stored; it is derived from the axes on read.
func (s *SQLStore) SaveChart(ctx context.Context, c *domain.ChartConfiguration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO charts (id, title, x_kind, x_field, y_kind, y_field, show_average, show_trend, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			x_kind = excluded.x_kind,
			x_field = excluded.x_field,
			y_kind = excluded.y_kind,
			y_field = excluded.y_field,
			show_average = excluded.show_average,
			show_trend = excluded.show_trend,
			created_at = excluded.created_at
	`,
		c.ID, c.Title, c.XAxis.Kind.String(), c.XAxis.Field, c.YAxis.Kind.String(), c.YAxis.Field,
		boolInt(c.ShowAverageLine), boolInt(c.ShowTrendLine), toNanos(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving chart %q: %w", c.ID, err)
	}
	return nil
}

const chartSelect = `
	SELECT id, title, x_kind, x_field, y_kind, y_field, show_average, show_trend, created_at FROM charts
`

func scanChart(sc scanner) (*domain.ChartConfiguration, error) {
	var (
		c                  domain.ChartConfiguration
		xKind, yKind       string
		showAvg, showTrend int
		created            int64
	)
	if err := sc.Scan(&c.ID, &c.Title, &xKind, &c.XAxis.Field, &yKind, &c.YAxis.Field, &showAvg, &showTrend, &created); err != nil {
		return nil, err
	}
	var err error
	if c.XAxis.Kind, err = domain.ParseAxisKind(xKind); err != nil {
		return nil, err
	}
	if c.YAxis.Kind, err = domain.ParseAxisKind(yKind); err != nil {
		return nil, err
	}
	c.ShowAverageLine = showAvg != 0
	c.ShowTrendLine = showTrend != 0
	c.CreatedAt = fromNanos(created)
	return &c, nil
}

// GetChart loads a chart configuration.
func (s *SQLStore) GetChart(ctx context.Context, id string) (*domain.ChartConfiguration, error) {
	c, err := scanChart(s.db.QueryRowContext(ctx, chartSelect+` WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "chart", id)
	}
	return c, nil
}

// ListCharts returns charts in creation order.
func (s *SQLStore) ListCharts(ctx context.Context) ([]*domain.ChartConfiguration, error) {
	rows, err := s.db.QueryContext(ctx, chartSelect+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing charts: %w", err)
	}
	defer rows.Close()

	var out []*domain.ChartConfiguration
	for rows.Next() {
		c, err := scanChart(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chart: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteChart removes a chart configuration.
func (s *SQLStore) DeleteChart(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id)
	return deleted(res, err, "chart", id)
}

var countTables = map[domain.EntityKind]string{
	domain.KindRecipe:  "recipes",
	domain.KindStage:   "stages",
	domain.KindBrew:    "brews",
	domain.KindRoaster: "roasters",
	domain.KindGrinder: "grinders",
	domain.KindChart:   "charts",
}

// Count returns how many entities of kind are stored.
func (s *SQLStore) Count(ctx context.Context, kind domain.EntityKind) (int, error) {
	table, ok := countTables[kind]
	if !ok {
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}
