package services

import (
	"context"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

// IPOReaderSvc defines read operations for IPO applications.
type IPOReaderSvc interface {
	// GetApplicationByID retrieves one application.
	GetApplicationByID(ctx context.Context, applicationID string) (*domain.IPOApplication, error)

	// ListApplicationsByCustomer retrieves a customer's applications.
	ListApplicationsByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.IPOApplication, error)

	// ListApplicationsByStatus retrieves applications in one verification
	// state, oldest first.
	ListApplicationsByStatus(ctx context.Context, status domain.IPOStatus, limit int, offset int) ([]domain.IPOApplication, error)
}

// IPOWriterSvc drives the application state machine. Verification blocks
// the subscription amount on the funding account; rejection and
// non-allotment release it; allotment consumes it.
type IPOWriterSvc interface {
	// CreateApplication records a pending subscription. No funds move.
	CreateApplication(ctx context.Context, actor domain.Actor, req dto.CreateIPOApplicationRequest) (*domain.IPOApplication, error)

	// VerifyApplication moves PENDING to VERIFIED and blocks the total
	// amount on the funding account.
	VerifyApplication(ctx context.Context, actor domain.Actor, applicationID string) (*domain.IPOApplication, error)

	// RejectApplication moves the application to REJECTED, releasing the
	// block if one was taken.
	RejectApplication(ctx context.Context, actor domain.Actor, applicationID string, reason string) (*domain.IPOApplication, error)

	// AllotApplication records the draw outcome for one VERIFIED
	// application. A full or partial allotment consumes the allotted
	// portion of the block and releases the remainder; a non-allotment
	// releases it all.
	AllotApplication(ctx context.Context, actor domain.Actor, applicationID string, req dto.AllotApplicationRequest) (*domain.IPOApplication, error)

	// BulkAllot processes many draw outcomes, one transaction per
	// application. A failed item never rolls back its neighbours.
	BulkAllot(ctx context.Context, actor domain.Actor, req dto.BulkAllotmentRequest) (*dto.BulkResult, error)

	// UpdateApplication changes application fields; governed.
	UpdateApplication(ctx context.Context, actor domain.Actor, applicationID string, req dto.UpdateIPOApplicationRequest) (*domain.IPOApplication, *domain.ModificationRequest, error)

	// DeleteApplication removes an unresolved application; governed. Any
	// outstanding block is released before the row goes away.
	DeleteApplication(ctx context.Context, actor domain.Actor, applicationID string) (*domain.ModificationRequest, error)
}

// IPOSvcFacade combines all IPO application service interfaces.
type IPOSvcFacade interface {
	IPOReaderSvc
	IPOWriterSvc
}
