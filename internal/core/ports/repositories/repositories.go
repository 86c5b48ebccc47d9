package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryFacade
	LedgerRepo       LedgerRepositoryFacade
	CustomerRepo     CustomerRepositoryFacade
	IPORepo          IPORepositoryFacade
	InvestorRepo     InvestorRepositoryFacade
	InvestmentRepo   InvestmentRepositoryFacade
	DistributionRepo DistributionRepositoryFacade
	FeeRepo          FeeRepositoryFacade
	PortfolioRepo    PortfolioRepositoryFacade
	ModificationRepo ModificationRepositoryFacade
	UserRepo         UserRepositoryFacade
	Tx               TxManager
}
