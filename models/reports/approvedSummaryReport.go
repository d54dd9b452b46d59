package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/hrfocus/erp_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApprovedAgg is the single aggregate record for an approved-summary
// report: total approved amount and approved row count for the scoped
// period. Zero/zero when no rows match.
type ApprovedAgg struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// ApprovedSummary computes the scoped aggregate. The three query shapes are
// keyed by scope: ALL is unconditional, MY filters by the requester id,
// DEPT filters by the snapshot department via the users join.
//
// end is the period's last day at midnight; the queries compare against
// the following midnight exclusively so a receipt dated anytime on the
// last day still counts.
func ApprovedSummary(
	ctx context.Context,
	db *gorm.DB,
	scope models.DataScope,
	requestedBy int,
	department string,
	start time.Time,
	end time.Time,
) (ApprovedAgg, error) {

	var agg ApprovedAgg
	endExclusive := end.AddDate(0, 0, 1)

	switch scope {
	case models.DataScopeAll:
		query := `
			SELECT COALESCE(SUM(e.amount), 0) AS total,
			       COUNT(*) AS count
			FROM expenses e
			WHERE e.approval_status = ?
			  AND e.receipt_date >= ?
			  AND e.receipt_date < ?
		`
		if err := db.WithContext(ctx).Raw(query, models.ApprovalStatusApproved, start, endExclusive).Scan(&agg).Error; err != nil {
			return ApprovedAgg{}, err
		}

	case models.DataScopeMy:
		query := `
			SELECT COALESCE(SUM(e.amount), 0) AS total,
			       COUNT(*) AS count
			FROM expenses e
			WHERE e.approval_status = ?
			  AND e.receipt_date >= ?
			  AND e.receipt_date < ?
			  AND e.user_id = ?
		`
		if err := db.WithContext(ctx).Raw(query, models.ApprovalStatusApproved, start, endExclusive, requestedBy).Scan(&agg).Error; err != nil {
			return ApprovedAgg{}, err
		}

	case models.DataScopeDept:
		dept := strings.TrimSpace(department)
		if dept == "" {
			return ApprovedAgg{}, errors.New("department is required for DEPT scope")
		}
		query := `
			SELECT COALESCE(SUM(e.amount), 0) AS total,
			       COUNT(*) AS count
			FROM expenses e
			JOIN users u ON u.id = e.user_id
			WHERE e.approval_status = ?
			  AND e.receipt_date >= ?
			  AND e.receipt_date < ?
			  AND TRIM(u.department_name) = ?
		`
		if err := db.WithContext(ctx).Raw(query, models.ApprovalStatusApproved, start, endExclusive, dept).Scan(&agg).Error; err != nil {
			return ApprovedAgg{}, err
		}

	default:
		return ApprovedAgg{}, errors.New("unknown data scope: " + string(scope))
	}

	return agg, nil
}
