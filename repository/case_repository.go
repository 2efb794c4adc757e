package repository

import (
	"context"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const caseColumns = `
	id, user_id, title, case_no, type, status, court, next_hearing,
	party_name, respondent, lawyer, contact_number,
	advocate_contact_number, adverse_party_advocate_name,
	case_year, on_behalf_of, description,
	drafts, opponent_drafts, court_orders, evidence, relevant_sections,
	created_at, updated_at`

// CaseRepository handles database operations for cases
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

func scanCase(row pgx.Row) (*models.Case, error) {
	c := &models.Case{}
	err := row.Scan(
		&c.ID, &c.UserID, &c.Title, &c.CaseNo, &c.Type, &c.Status, &c.Court, &c.NextHearing,
		&c.PartyName, &c.Respondent, &c.Lawyer, &c.ContactNumber,
		&c.AdvocateContactNumber, &c.AdversePartyAdvocateName,
		&c.CaseYear, &c.OnBehalfOf, &c.Description,
		&c.Drafts, &c.OpponentDrafts, &c.CourtOrders, &c.Evidence, &c.RelevantSections,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanCases(rows pgx.Rows) ([]*models.Case, error) {
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// Create creates a new case record
func (r *CaseRepository) Create(ctx context.Context, kase *models.Case) error {
	query := `
		INSERT INTO cases (
			user_id, title, case_no, type, status, court, next_hearing,
			party_name, respondent, lawyer, contact_number,
			advocate_contact_number, adverse_party_advocate_name,
			case_year, on_behalf_of, description,
			drafts, opponent_drafts, court_orders, evidence, relevant_sections
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		kase.UserID, kase.Title, kase.CaseNo, kase.Type, kase.Status, kase.Court, kase.NextHearing,
		kase.PartyName, kase.Respondent, kase.Lawyer, kase.ContactNumber,
		kase.AdvocateContactNumber, kase.AdversePartyAdvocateName,
		kase.CaseYear, kase.OnBehalfOf, kase.Description,
		kase.Drafts, kase.OpponentDrafts, kase.CourtOrders, kase.Evidence, kase.RelevantSections,
	).Scan(&kase.ID, &kase.CreatedAt, &kase.UpdatedAt)
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	return scanCase(r.db.QueryRow(ctx, query, id))
}

// ListByUserID retrieves all cases for a user, newest first
func (r *CaseRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanCases(rows)
}

// Update updates the editable fields of a case
func (r *CaseRepository) Update(ctx context.Context, kase *models.Case) error {
	query := `
		UPDATE cases SET
			title = $2, case_no = $3, type = $4, status = $5, court = $6,
			next_hearing = $7, party_name = $8, respondent = $9, lawyer = $10,
			contact_number = $11, advocate_contact_number = $12,
			adverse_party_advocate_name = $13, case_year = $14,
			on_behalf_of = $15, description = $16, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRow(
		ctx, query,
		kase.ID, kase.Title, kase.CaseNo, kase.Type, kase.Status, kase.Court,
		kase.NextHearing, kase.PartyName, kase.Respondent, kase.Lawyer,
		kase.ContactNumber, kase.AdvocateContactNumber,
		kase.AdversePartyAdvocateName, kase.CaseYear,
		kase.OnBehalfOf, kase.Description,
	).Scan(&kase.UpdatedAt)
}

// UpdateStatus changes only the status of a case
func (r *CaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CaseStatus) error {
	query := `UPDATE cases SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateSection replaces one attachment section of a case
func (r *CaseRepository) UpdateSection(ctx context.Context, id uuid.UUID, section models.AttachmentSection, list models.AttachmentList) error {
	column, ok := sectionColumns[section]
	if !ok {
		return pgx.ErrNoRows
	}

	query := `UPDATE cases SET ` + column + ` = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, list)
	return err
}

// sectionColumns maps attachment sections to their JSONB columns. Only values
// from this map are ever interpolated into SQL.
var sectionColumns = map[models.AttachmentSection]string{
	models.SectionDrafts:           "drafts",
	models.SectionOpponentDrafts:   "opponent_drafts",
	models.SectionCourtOrders:      "court_orders",
	models.SectionEvidence:         "evidence",
	models.SectionRelevantSections: "relevant_sections",
}

// Delete deletes a case record
func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cases WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// SearchOwned performs a keyword search over the user's own cases,
// matching title, description and type, capped at limit
func (r *CaseRepository) SearchOwned(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*models.Case, error) {
	sql := `
		SELECT ` + caseColumns + `
		FROM cases
		WHERE user_id = $1
		  AND (title ILIKE $2 OR description ILIKE $2 OR type ILIKE $2)
		ORDER BY updated_at DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, sql, userID, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanCases(rows)
}

// CountByStatus returns per-status case counts for a user's dashboard
func (r *CaseRepository) CountByStatus(ctx context.Context, userID uuid.UUID) (map[models.CaseStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM cases WHERE user_id = $1 GROUP BY status`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.CaseStatus]int)
	for rows.Next() {
		var status models.CaseStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
