package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgsql repository over one shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(dbPool),
		LedgerRepo:       newPgxLedgerRepository(dbPool),
		CustomerRepo:     newPgxCustomerRepository(dbPool),
		IPORepo:          newPgxIPORepository(dbPool),
		InvestorRepo:     newPgxInvestorRepository(dbPool),
		InvestmentRepo:   newPgxInvestmentRepository(dbPool),
		DistributionRepo: newPgxDistributionRepository(dbPool),
		FeeRepo:          newPgxFeeRepository(dbPool),
		PortfolioRepo:    newPgxPortfolioRepository(dbPool),
		ModificationRepo: newPgxModificationRepository(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
		Tx:               &BaseRepository{Pool: dbPool},
	}
}
