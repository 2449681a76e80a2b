package publications

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/quire/pkg/pagination"
	"github.com/JaimeStill/quire/pkg/query"
	"github.com/JaimeStill/quire/pkg/repository"
)

// Store persists publication records. It never touches remote files.
type Store interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Publication], error)
	Recent(ctx context.Context, n int) ([]Publication, error)
	Stats(ctx context.Context) (Stats, error)
	Find(ctx context.Context, id uuid.UUID) (*Publication, error)
	// Increment adds one to the download counter and returns the updated record.
	Increment(ctx context.Context, id uuid.UUID) (*Publication, error)
	Insert(ctx context.Context, p *Publication) (*Publication, error)
	Update(ctx context.Context, p *Publication) (*Publication, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Clear removes the fields of slot from one record.
	Clear(ctx context.Context, id uuid.UUID, slot Slot) error
	// Scrub removes every reference to publicID across all records and
	// returns the number of records changed.
	Scrub(ctx context.Context, publicID string) (int64, error)
}

type pgStore struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed Store.
func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

// joined wraps a data-modifying statement that RETURNING * into a query that
// selects the projection with its creator join.
func joined(stmt string) string {
	return fmt.Sprintf(
		"WITH p AS (%s RETURNING *) SELECT %s FROM p LEFT JOIN public.users u ON u.id = p.created_by",
		stmt, projection.Columns(),
	)
}

func (s *pgStore) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Publication], error) {
	qb := filters.Builder()

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, s.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count publications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.Limit)
	pubs, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanPublication)
	if err != nil {
		return nil, fmt.Errorf("query publications: %w", err)
	}

	result := pagination.NewPageResult(pubs, total, page.Page, page.Limit)
	return &result, nil
}

func (s *pgStore) Recent(ctx context.Context, n int) ([]Publication, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildLimit(n)

	pubs, err := repository.QueryMany(ctx, s.db, q, args, scanPublication)
	if err != nil {
		return nil, fmt.Errorf("query recent publications: %w", err)
	}
	return pubs, nil
}

func (s *pgStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(download_count), 0) FROM public.publications",
	).Scan(&st.Total, &st.Downloads)
	if err != nil {
		return st, fmt.Errorf("publication stats: %w", err)
	}
	return st, nil
}

func (s *pgStore) Find(ctx context.Context, id uuid.UUID) (*Publication, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, s.db, q, args, scanPublication)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (s *pgStore) Increment(ctx context.Context, id uuid.UUID) (*Publication, error) {
	q := joined("UPDATE public.publications SET download_count = download_count + 1 WHERE id = $1")

	p, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanPublication)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (s *pgStore) Insert(ctx context.Context, in *Publication) (*Publication, error) {
	q := joined(`
		INSERT INTO public.publications(
			title, description, authors, publish_date, publisher, category, tags,
			file_url, file_public_id, file_size, file_format, file_page_count,
			thumbnail, thumbnail_public_id, is_published, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`)

	args := []any{
		in.Title,
		in.Description,
		in.Authors,
		in.PublishDate,
		in.Publisher,
		in.Category,
		in.Tags,
		in.FileURL,
		in.FilePublicID,
		in.FileSize,
		in.FileFormat,
		in.FilePageCount,
		in.Thumbnail,
		in.ThumbnailPublicID,
		in.IsPublished,
		in.CreatedBy,
	}

	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Publication, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPublication)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (s *pgStore) Update(ctx context.Context, in *Publication) (*Publication, error) {
	q := joined(`
		UPDATE public.publications SET
			title = $2, description = $3, authors = $4, publish_date = $5, publisher = $6,
			category = $7, tags = $8, file_url = $9, file_public_id = $10, file_size = $11,
			file_format = $12, file_page_count = $13, thumbnail = $14, thumbnail_public_id = $15,
			is_published = $16, updated_at = now()
		WHERE id = $1`)

	args := []any{
		in.ID,
		in.Title,
		in.Description,
		in.Authors,
		in.PublishDate,
		in.Publisher,
		in.Category,
		in.Tags,
		in.FileURL,
		in.FilePublicID,
		in.FileSize,
		in.FileFormat,
		in.FilePageCount,
		in.Thumbnail,
		in.ThumbnailPublicID,
		in.IsPublished,
	}

	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Publication, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPublication)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (s *pgStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, s.db, "DELETE FROM public.publications WHERE id = $1", id)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) Clear(ctx context.Context, id uuid.UUID, slot Slot) error {
	q := fmt.Sprintf(
		"UPDATE public.publications SET %s, updated_at = now() WHERE id = $1",
		nullAssignments(slot),
	)
	err := repository.ExecExpectOne(ctx, s.db, q, id)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) Scrub(ctx context.Context, publicID string) (int64, error) {
	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int64, error) {
		var total int64
		for _, slot := range []Slot{SlotFile, SlotThumbnail} {
			q := fmt.Sprintf(
				"UPDATE public.publications SET %s, updated_at = now() WHERE %s = $1",
				nullAssignments(slot), slotColumns[slot][1],
			)
			n, err := repository.ExecCount(ctx, tx, q, publicID)
			if err != nil {
				return 0, fmt.Errorf("scrub %s references: %w", slot, err)
			}
			total += n
		}
		return total, nil
	})
}

func nullAssignments(slot Slot) string {
	cols := slotColumns[slot]
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = NULL"
	}
	return strings.Join(sets, ", ")
}
