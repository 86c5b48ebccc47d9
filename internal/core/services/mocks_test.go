package services_test

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Shared mocks for the service test suites. Each method prefers the
// optional Fn override so a single test can swap in bespoke behaviour
// without re-stubbing the whole interface.

// --- Mock TxManager ---

type MockTxManager struct {
	mock.Mock
	BeginFn    func(ctx context.Context) (pgx.Tx, error)
	CommitFn   func(ctx context.Context, tx pgx.Tx) error
	RollbackFn func(ctx context.Context, tx pgx.Tx) error
}

func (m *MockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.BeginFn != nil {
		return m.BeginFn(ctx)
	}
	args := m.Called(ctx)
	var tx pgx.Tx
	if args.Get(0) != nil {
		tx = args.Get(0).(pgx.Tx)
	}
	return tx, args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	if m.CommitFn != nil {
		return m.CommitFn(ctx, tx)
	}
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	if m.RollbackFn != nil {
		return m.RollbackFn(ctx, tx)
	}
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
	FindAccountByIDFn        func(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountsByCustomerFn func(ctx context.Context, customerID string) ([]domain.Account, error)
	FindOfficeAccountFn      func(ctx context.Context) (*domain.Account, error)
	FindAccountForUpdateFn   func(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)
	UpdateBalancesInTxFn     func(ctx context.Context, tx pgx.Tx, account domain.Account) error
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if m.FindAccountByIDFn != nil {
		return m.FindAccountByIDFn(ctx, accountID)
	}
	args := m.Called(ctx, accountID)
	var account *domain.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCustomer(ctx context.Context, customerID string) ([]domain.Account, error) {
	if m.FindAccountsByCustomerFn != nil {
		return m.FindAccountsByCustomerFn(ctx, customerID)
	}
	args := m.Called(ctx, customerID)
	var accounts []domain.Account
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.Account)
	}
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) FindOfficeAccount(ctx context.Context) (*domain.Account, error) {
	if m.FindOfficeAccountFn != nil {
		return m.FindOfficeAccountFn(ctx)
	}
	args := m.Called(ctx)
	var account *domain.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	var accounts []domain.Account
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.Account)
	}
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountDetails(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	if m.FindAccountForUpdateFn != nil {
		return m.FindAccountForUpdateFn(ctx, tx, accountID)
	}
	args := m.Called(ctx, tx, accountID)
	var account *domain.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	var accounts map[string]domain.Account
	if args.Get(0) != nil {
		accounts = args.Get(0).(map[string]domain.Account)
	}
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	if m.UpdateBalancesInTxFn != nil {
		return m.UpdateBalancesInTxFn(ctx, tx, account)
	}
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountDetailsInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
	InsertTransactionInTxFn func(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error
}

func (m *MockLedgerRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	if m.InsertTransactionInTxFn != nil {
		return m.InsertTransactionInTxFn(ctx, tx, txn)
	}
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	var txn *domain.Transaction
	if args.Get(0) != nil {
		txn = args.Get(0).(*domain.Transaction)
	}
	return txn, args.Error(1)
}

func (m *MockLedgerRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

// --- Mock ModificationRepository ---

type MockModificationRepository struct {
	mock.Mock
	FindRequestForUpdateFn func(ctx context.Context, tx pgx.Tx, requestID string) (*domain.ModificationRequest, error)
}

func (m *MockModificationRepository) SaveRequest(ctx context.Context, req domain.ModificationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockModificationRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.ModificationRequest, error) {
	args := m.Called(ctx, requestID)
	var req *domain.ModificationRequest
	if args.Get(0) != nil {
		req = args.Get(0).(*domain.ModificationRequest)
	}
	return req, args.Error(1)
}

func (m *MockModificationRepository) FindRequestForUpdate(ctx context.Context, tx pgx.Tx, requestID string) (*domain.ModificationRequest, error) {
	if m.FindRequestForUpdateFn != nil {
		return m.FindRequestForUpdateFn(ctx, tx, requestID)
	}
	args := m.Called(ctx, tx, requestID)
	var req *domain.ModificationRequest
	if args.Get(0) != nil {
		req = args.Get(0).(*domain.ModificationRequest)
	}
	return req, args.Error(1)
}

func (m *MockModificationRepository) ResolveRequestInTx(ctx context.Context, tx pgx.Tx, requestID string, status domain.RequestStatus, reviewerID string, notes string) error {
	args := m.Called(ctx, tx, requestID, status, reviewerID, notes)
	return args.Error(0)
}

func (m *MockModificationRepository) ListRequestsByStatus(ctx context.Context, status domain.RequestStatus, limit int, offset int) ([]domain.ModificationRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	var reqs []domain.ModificationRequest
	if args.Get(0) != nil {
		reqs = args.Get(0).([]domain.ModificationRequest)
	}
	return reqs, args.Error(1)
}

// --- Mock CustomerRepository ---

type MockCustomerRepository struct {
	mock.Mock
	FindCustomerByIDFn func(ctx context.Context, customerID string) (*domain.Customer, error)
}

func (m *MockCustomerRepository) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) SaveCustomerInTx(ctx context.Context, tx pgx.Tx, customer domain.Customer) error {
	args := m.Called(ctx, tx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	if m.FindCustomerByIDFn != nil {
		return m.FindCustomerByIDFn(ctx, customerID)
	}
	args := m.Called(ctx, customerID)
	var customer *domain.Customer
	if args.Get(0) != nil {
		customer = args.Get(0).(*domain.Customer)
	}
	return customer, args.Error(1)
}

func (m *MockCustomerRepository) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) UpdateCustomerInTx(ctx context.Context, tx pgx.Tx, customer domain.Customer) error {
	args := m.Called(ctx, tx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) ListCustomers(ctx context.Context, limit int, offset int) ([]domain.Customer, error) {
	args := m.Called(ctx, limit, offset)
	var customers []domain.Customer
	if args.Get(0) != nil {
		customers = args.Get(0).([]domain.Customer)
	}
	return customers, args.Error(1)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
	FindUserByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindUserByUsernameFn != nil {
		return m.FindUserByUsernameFn(ctx, username)
	}
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

// --- Mock InvestorRepository ---

type MockInvestorRepository struct {
	mock.Mock
	FindInvestorForUpdateFn func(ctx context.Context, tx pgx.Tx, investorID string) (*domain.Investor, error)
}

func (m *MockInvestorRepository) SaveInvestor(ctx context.Context, investor domain.Investor) error {
	args := m.Called(ctx, investor)
	return args.Error(0)
}

func (m *MockInvestorRepository) SaveInvestorInTx(ctx context.Context, tx pgx.Tx, investor domain.Investor) error {
	args := m.Called(ctx, tx, investor)
	return args.Error(0)
}

func (m *MockInvestorRepository) FindInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error) {
	args := m.Called(ctx, investorID)
	var investor *domain.Investor
	if args.Get(0) != nil {
		investor = args.Get(0).(*domain.Investor)
	}
	return investor, args.Error(1)
}

func (m *MockInvestorRepository) FindInvestorForUpdate(ctx context.Context, tx pgx.Tx, investorID string) (*domain.Investor, error) {
	if m.FindInvestorForUpdateFn != nil {
		return m.FindInvestorForUpdateFn(ctx, tx, investorID)
	}
	args := m.Called(ctx, tx, investorID)
	var investor *domain.Investor
	if args.Get(0) != nil {
		investor = args.Get(0).(*domain.Investor)
	}
	return investor, args.Error(1)
}

func (m *MockInvestorRepository) UpdateCapitalInTx(ctx context.Context, tx pgx.Tx, investor domain.Investor) error {
	args := m.Called(ctx, tx, investor)
	return args.Error(0)
}

func (m *MockInvestorRepository) ListInvestors(ctx context.Context, limit int, offset int) ([]domain.Investor, error) {
	args := m.Called(ctx, limit, offset)
	var investors []domain.Investor
	if args.Get(0) != nil {
		investors = args.Get(0).([]domain.Investor)
	}
	return investors, args.Error(1)
}

// --- Mock InvestmentRepository ---

type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) SaveInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error {
	args := m.Called(ctx, tx, investment)
	return args.Error(0)
}

func (m *MockInvestmentRepository) FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	args := m.Called(ctx, investmentID)
	var investment *domain.Investment
	if args.Get(0) != nil {
		investment = args.Get(0).(*domain.Investment)
	}
	return investment, args.Error(1)
}

func (m *MockInvestmentRepository) FindInvestmentForUpdate(ctx context.Context, tx pgx.Tx, investmentID string) (*domain.Investment, error) {
	args := m.Called(ctx, tx, investmentID)
	var investment *domain.Investment
	if args.Get(0) != nil {
		investment = args.Get(0).(*domain.Investment)
	}
	return investment, args.Error(1)
}

func (m *MockInvestmentRepository) UpdateRealizationInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error {
	args := m.Called(ctx, tx, investment)
	return args.Error(0)
}

func (m *MockInvestmentRepository) ListInvestmentsByInvestor(ctx context.Context, investorID string, limit int, offset int) ([]domain.Investment, error) {
	args := m.Called(ctx, investorID, limit, offset)
	var investments []domain.Investment
	if args.Get(0) != nil {
		investments = args.Get(0).([]domain.Investment)
	}
	return investments, args.Error(1)
}

// --- Mock IPORepository ---

type MockIPORepository struct {
	mock.Mock
}

func (m *MockIPORepository) SaveApplication(ctx context.Context, app domain.IPOApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockIPORepository) FindApplicationByID(ctx context.Context, applicationID string) (*domain.IPOApplication, error) {
	args := m.Called(ctx, applicationID)
	var app *domain.IPOApplication
	if args.Get(0) != nil {
		app = args.Get(0).(*domain.IPOApplication)
	}
	return app, args.Error(1)
}

func (m *MockIPORepository) FindApplicationForUpdate(ctx context.Context, tx pgx.Tx, applicationID string) (*domain.IPOApplication, error) {
	args := m.Called(ctx, tx, applicationID)
	var app *domain.IPOApplication
	if args.Get(0) != nil {
		app = args.Get(0).(*domain.IPOApplication)
	}
	return app, args.Error(1)
}

func (m *MockIPORepository) UpdateApplicationInTx(ctx context.Context, tx pgx.Tx, app domain.IPOApplication) error {
	args := m.Called(ctx, tx, app)
	return args.Error(0)
}

func (m *MockIPORepository) DeleteApplicationInTx(ctx context.Context, tx pgx.Tx, applicationID string) error {
	args := m.Called(ctx, tx, applicationID)
	return args.Error(0)
}

func (m *MockIPORepository) ListApplicationsByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.IPOApplication, error) {
	args := m.Called(ctx, customerID, limit, offset)
	var apps []domain.IPOApplication
	if args.Get(0) != nil {
		apps = args.Get(0).([]domain.IPOApplication)
	}
	return apps, args.Error(1)
}

func (m *MockIPORepository) ListApplicationsByStatus(ctx context.Context, status domain.IPOStatus, limit int, offset int) ([]domain.IPOApplication, error) {
	args := m.Called(ctx, status, limit, offset)
	var apps []domain.IPOApplication
	if args.Get(0) != nil {
		apps = args.Get(0).([]domain.IPOApplication)
	}
	return apps, args.Error(1)
}

// --- Mock Notifier ---

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n portssvc.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// --- Mock PortfolioRepository ---

type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) FindPortfolioByCustomer(ctx context.Context, customerID string) (*domain.Portfolio, error) {
	args := m.Called(ctx, customerID)
	var portfolio *domain.Portfolio
	if args.Get(0) != nil {
		portfolio = args.Get(0).(*domain.Portfolio)
	}
	return portfolio, args.Error(1)
}

func (m *MockPortfolioRepository) FindPortfolioForUpdate(ctx context.Context, tx pgx.Tx, customerID string) (*domain.Portfolio, error) {
	args := m.Called(ctx, tx, customerID)
	var portfolio *domain.Portfolio
	if args.Get(0) != nil {
		portfolio = args.Get(0).(*domain.Portfolio)
	}
	return portfolio, args.Error(1)
}

func (m *MockPortfolioRepository) UpdateAggregatesInTx(ctx context.Context, tx pgx.Tx, portfolio domain.Portfolio) error {
	args := m.Called(ctx, tx, portfolio)
	return args.Error(0)
}

func (m *MockPortfolioRepository) UpsertHoldingInTx(ctx context.Context, tx pgx.Tx, holding domain.Holding) (*domain.Holding, error) {
	args := m.Called(ctx, tx, holding)
	var saved *domain.Holding
	if args.Get(0) != nil {
		saved = args.Get(0).(*domain.Holding)
	}
	return saved, args.Error(1)
}

func (m *MockPortfolioRepository) FindHoldingByID(ctx context.Context, holdingID string) (*domain.Holding, error) {
	args := m.Called(ctx, holdingID)
	var holding *domain.Holding
	if args.Get(0) != nil {
		holding = args.Get(0).(*domain.Holding)
	}
	return holding, args.Error(1)
}

func (m *MockPortfolioRepository) FindHoldingForUpdate(ctx context.Context, tx pgx.Tx, holdingID string) (*domain.Holding, error) {
	args := m.Called(ctx, tx, holdingID)
	var holding *domain.Holding
	if args.Get(0) != nil {
		holding = args.Get(0).(*domain.Holding)
	}
	return holding, args.Error(1)
}

func (m *MockPortfolioRepository) UpdateHoldingInTx(ctx context.Context, tx pgx.Tx, holding domain.Holding) error {
	args := m.Called(ctx, tx, holding)
	return args.Error(0)
}

func (m *MockPortfolioRepository) DeleteHoldingInTx(ctx context.Context, tx pgx.Tx, holdingID string) error {
	args := m.Called(ctx, tx, holdingID)
	return args.Error(0)
}

func (m *MockPortfolioRepository) ListHoldingsByPortfolio(ctx context.Context, portfolioID string) ([]domain.Holding, error) {
	args := m.Called(ctx, portfolioID)
	var holdings []domain.Holding
	if args.Get(0) != nil {
		holdings = args.Get(0).([]domain.Holding)
	}
	return holdings, args.Error(1)
}

// --- Mock FeeRepository ---

type MockFeeRepository struct {
	mock.Mock
}

func (m *MockFeeRepository) SaveFee(ctx context.Context, fee domain.Fee) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *MockFeeRepository) FindFeeByID(ctx context.Context, feeID string) (*domain.Fee, error) {
	args := m.Called(ctx, feeID)
	var fee *domain.Fee
	if args.Get(0) != nil {
		fee = args.Get(0).(*domain.Fee)
	}
	return fee, args.Error(1)
}

func (m *MockFeeRepository) ListPendingFeesForUpdate(ctx context.Context, tx pgx.Tx, customerID string) ([]domain.Fee, error) {
	args := m.Called(ctx, tx, customerID)
	var fees []domain.Fee
	if args.Get(0) != nil {
		fees = args.Get(0).([]domain.Fee)
	}
	return fees, args.Error(1)
}

func (m *MockFeeRepository) MarkFeePaidInTx(ctx context.Context, tx pgx.Tx, feeID string, distributionID string, userID string) error {
	args := m.Called(ctx, tx, feeID, distributionID, userID)
	return args.Error(0)
}

func (m *MockFeeRepository) UpdateFeeStatus(ctx context.Context, fee domain.Fee) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *MockFeeRepository) ListFeesByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.Fee, error) {
	args := m.Called(ctx, customerID, limit, offset)
	var fees []domain.Fee
	if args.Get(0) != nil {
		fees = args.Get(0).([]domain.Fee)
	}
	return fees, args.Error(1)
}

// --- Mock DistributionRepository ---

type MockDistributionRepository struct {
	mock.Mock
}

func (m *MockDistributionRepository) InsertDistributionInTx(ctx context.Context, tx pgx.Tx, dist domain.ProfitDistribution) error {
	args := m.Called(ctx, tx, dist)
	return args.Error(0)
}

func (m *MockDistributionRepository) FindDistributionByID(ctx context.Context, distributionID string) (*domain.ProfitDistribution, error) {
	args := m.Called(ctx, distributionID)
	var dist *domain.ProfitDistribution
	if args.Get(0) != nil {
		dist = args.Get(0).(*domain.ProfitDistribution)
	}
	return dist, args.Error(1)
}

func (m *MockDistributionRepository) ListDistributionsByInvestment(ctx context.Context, investmentID string, limit int, offset int) ([]domain.ProfitDistribution, error) {
	args := m.Called(ctx, investmentID, limit, offset)
	var dists []domain.ProfitDistribution
	if args.Get(0) != nil {
		dists = args.Get(0).([]domain.ProfitDistribution)
	}
	return dists, args.Error(1)
}
