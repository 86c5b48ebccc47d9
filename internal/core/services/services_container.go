package services

import (
	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.Notifier) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	// The ledger service comes first since every money-moving service
	// posts through it.
	container.Ledger = NewLedgerService(repos.AccountRepo, repos.LedgerRepo, repos.Tx)

	// The approval service replays governed changes, so it needs the
	// ledger for fund-block reconciliation on application edits.
	container.Approval = NewApprovalService(
		repos.ModificationRepo,
		repos.AccountRepo,
		repos.CustomerRepo,
		repos.IPORepo,
		repos.PortfolioRepo,
		container.Ledger,
		repos.Tx,
	)

	// Governed services divert maker mutations into the approval queue.
	container.Account = NewAccountService(repos.AccountRepo, repos.CustomerRepo, container.Approval)
	container.Customer = NewCustomerService(repos.CustomerRepo, repos.AccountRepo, container.Approval, repos.Tx)
	container.Portfolio = NewPortfolioService(repos.PortfolioRepo, container.Approval, repos.Tx)

	container.Investor = NewInvestorService(
		repos.InvestorRepo,
		repos.InvestmentRepo,
		repos.AccountRepo,
		container.Ledger,
		notifier,
		repos.Tx,
	)

	container.IPO = NewIPOService(
		repos.IPORepo,
		repos.AccountRepo,
		repos.CustomerRepo,
		container.Ledger,
		container.Investor,
		container.Portfolio,
		container.Approval,
		notifier,
		repos.Tx,
	)

	container.Distribution = NewDistributionService(
		repos.InvestmentRepo,
		repos.InvestorRepo,
		repos.AccountRepo,
		repos.FeeRepo,
		repos.DistributionRepo,
		container.Ledger,
		container.Investor,
		notifier,
		repos.Tx,
	)

	container.Fee = NewFeeService(repos.FeeRepo, repos.CustomerRepo, repos.AccountRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg)

	return container
}
