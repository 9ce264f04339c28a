package out

import (
	"context"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
)

// RecordSourcePort is the upstream reporting API. Implementations return
// *domain.UpstreamError on transport or protocol failures.
type RecordSourcePort interface {
	// Distinct location names, sorted
	GetLocations(ctx context.Context) ([]string, error)

	// Raw appointment rows for one location
	GetAppointmentRecords(ctx context.Context, location string) ([]domain.AppointmentRecord, error)
}
