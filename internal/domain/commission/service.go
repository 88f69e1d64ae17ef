package commission

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"maroctour/internal/domain/payment"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo    *Repository
	now     func() time.Time
	loggerf func(format string, args ...interface{})
}

func NewService(repo *Repository, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, now: time.Now, loggerf: loggerf}
}

// ParseFilter reads the report query values. Empty values mean no bound.
func ParseFilter(dateFrom, dateTo, status, serviceType string) (Filter, error) {
	f := Filter{Status: StatusAll, ServiceType: StatusAll}
	if dateFrom != "" {
		t, err := time.Parse(dateLayout, dateFrom)
		if err != nil {
			return f, fmt.Errorf("%w: date_from", ErrInvalidFilter)
		}
		f.DateFrom = &t
	}
	if dateTo != "" {
		t, err := time.Parse(dateLayout, dateTo)
		if err != nil {
			return f, fmt.Errorf("%w: date_to", ErrInvalidFilter)
		}
		f.DateTo = &t
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, fmt.Errorf("%w: date_to before date_from", ErrInvalidFilter)
	}

	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case "", StatusAll:
	case StatusPaid, StatusUnpaid:
		f.Status = s
	default:
		return f, fmt.Errorf("%w: status", ErrInvalidFilter)
	}

	switch st := strings.ToLower(strings.TrimSpace(serviceType)); st {
	case "", StatusAll:
	case "hotel", "car", "tourism":
		f.ServiceType = st
	default:
		return f, fmt.Errorf("%w: service_type", ErrInvalidFilter)
	}
	return f, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Row, int64, error) {
	return s.repo.List(ctx, f)
}

// Summary totals every row matching f, ignoring paging.
func (s *Service) Summary(ctx context.Context, f Filter) (Summary, error) {
	f.Offset, f.Limit = 0, 0
	rows, _, err := s.repo.List(ctx, f)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(rows), nil
}

// TogglePaid marks the commission of a paid payment as collected, or back
// to pending.
func (s *Service) TogglePaid(ctx context.Context, paymentID string) (*payment.Payment, error) {
	p, err := s.repo.TogglePaid(ctx, paymentID, s.now())
	if err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=\"commission toggled\" payment_id=%s paid=%t", p.ID, p.IsCommissionPaid)
	return p, nil
}

var csvHeader = []string{
	"ID Paiement",
	"Réservation",
	"Service",
	"Type",
	"Partenaire",
	"Montant total",
	"Commission admin",
	"Montant partenaire",
	"Devise",
	"Statut paiement",
	"Date de paiement",
	"Statut commission",
}

// ExportCSV writes every row matching f to w and returns the download name.
func (s *Service) ExportCSV(ctx context.Context, f Filter, w io.Writer) (string, error) {
	f.Offset, f.Limit = 0, 0
	rows, _, err := s.repo.List(ctx, f)
	if err != nil {
		return "", err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		paidAt := ""
		if r.PaidAt != nil {
			paidAt = r.PaidAt.Format(dateLayout)
		}
		if err := cw.Write([]string{
			r.PaymentID,
			r.BookingID,
			r.ServiceName,
			r.ServiceType,
			r.PartnerName,
			r.TotalAmount.StringFixed(2),
			r.AdminCommission.StringFixed(2),
			r.PartnerAmount.StringFixed(2),
			r.Currency,
			r.PaymentStatus,
			paidAt,
			commissionLabel(r.IsCommissionPaid),
		}); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return ExportFilename(s.now()), nil
}

func ExportFilename(at time.Time) string {
	return "commissions_" + at.Format(dateLayout) + ".csv"
}

func commissionLabel(paid bool) string {
	if paid {
		return "Payée"
	}
	return "En attente"
}
