package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	cacheMocks "customer-registry/internal/cache/mocks"
	apperrors "customer-registry/internal/errors"
	"customer-registry/internal/model"
	rpsMocks "customer-registry/internal/repository/mocks"
)

type customerTestData struct {
	ctx     context.Context
	payload *model.Customer
}

type customerServiceTestSuite struct {
	suite.Suite
	customerSvc       CustomerService
	customerRpsMock   *rpsMocks.CustomerRepository
	customerCacheMock *cacheMocks.CustomerCache
	testData          *customerTestData
}

func (s *customerServiceTestSuite) SetupTest() {
	t := s.T()
	s.customerRpsMock = rpsMocks.NewCustomerRepository(t)
	s.customerCacheMock = cacheMocks.NewCustomerCache(t)
	s.customerSvc = NewCustomerService(s.customerRpsMock, s.customerCacheMock)

	salutation := "Mr"
	salesPerson := "Jane Doe"
	s.testData = &customerTestData{
		ctx: context.Background(),
		payload: &model.Customer{
			Name:        "John Doe",
			Salutation:  &salutation,
			SalesPerson: &salesPerson,
			Emails: []model.Email{
				{Address: "john@gmail.com", Primary: true},
				{Address: "jane@gmail.com", Primary: false},
			},
			Phones: []model.Phone{
				{Number: "123456789", Primary: true},
				{Number: "987654321", Primary: false},
			},
			Addresses: []model.Address{
				{Line: "123, Main Street", City: "New York", State: "New York", Country: "USA", Pincode: "10001"},
				{Line: "456, Main Street", City: "Los Angeles", State: "California", Country: "USA", Pincode: "90001"},
			},
		},
	}
}

func (s *customerServiceTestSuite) persisted() *model.Customer {
	return &model.Customer{
		ID:   "8c9bd7f2-7a52-4a2a-9ad4-b4a124b6a0bb",
		Name: "John Doe",
		Emails: []model.Email{
			{ID: "e-1", Address: "john@gmail.com", Primary: true},
			{ID: "e-2", Address: "jane@gmail.com", Primary: false},
		},
		Phones: []model.Phone{
			{ID: "p-1", Number: "123456789", Primary: true},
			{ID: "p-2", Number: "987654321", Primary: false},
		},
		Addresses: []model.Address{
			{ID: "a-1", Line: "123, Main Street", City: "New York", State: "New York", Country: "USA", Pincode: "10001"},
			{ID: "a-2", Line: "456, Main Street", City: "Los Angeles", State: "California", Country: "USA", Pincode: "90001"},
		},
	}
}

func (s *customerServiceTestSuite) TestCreateSuccessfully() {
	ctx := s.testData.ctx
	payload := s.testData.payload

	s.customerRpsMock.On("FindByName", ctx, payload.Name).Return(nil, nil).Once()
	s.customerRpsMock.On("Create", ctx, mock.AnythingOfType("*model.Customer")).Return(nil).Once()

	s.T().Log("customer with two emails, phones and addresses must be created")
	{
		c, err := s.customerSvc.Create(ctx, payload)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().NotEmpty(c.ID, "aggregate id must be assigned")
		s.Assert().Len(c.Emails, 2, "both emails must be persisted")
		s.Assert().Len(c.Phones, 2, "both phones must be persisted")
		s.Assert().Len(c.Addresses, 2, "both addresses must be persisted")

		for _, e := range c.Emails {
			s.Assert().NotEmpty(e.ID, "email rows must get ids")
		}
	}
}

func (s *customerServiceTestSuite) TestCreateDuplicateName() {
	ctx := s.testData.ctx
	payload := s.testData.payload

	s.customerRpsMock.On("FindByName", ctx, payload.Name).Return(s.persisted(), nil).Once()

	s.T().Log("customer name is already claimed - conflict must be raised")
	{
		_, err := s.customerSvc.Create(ctx, payload)
		s.Assert().Error(err, "conflict must be raised")

		var conflictErr *apperrors.ConflictErr
		s.Assert().ErrorAs(err, &conflictErr, "error must be conflict error")
		s.customerRpsMock.AssertNotCalled(s.T(), "Create", ctx, mock.AnythingOfType("*model.Customer"))
	}
}

func (s *customerServiceTestSuite) TestCreateCollapsesDuplicateKeys() {
	ctx := s.testData.ctx
	payload := s.testData.payload
	payload.Emails = []model.Email{
		{Address: "john@gmail.com", Primary: false},
		{Address: "john@gmail.com", Primary: true},
	}

	s.customerRpsMock.On("FindByName", ctx, payload.Name).Return(nil, nil).Once()
	s.customerRpsMock.On("Create", ctx, mock.AnythingOfType("*model.Customer")).Return(nil).Once()

	s.T().Log("duplicate email identities in one payload collapse to the later entry")
	{
		c, err := s.customerSvc.Create(ctx, payload)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Len(c.Emails, 1, "duplicate identity must collapse to one record")
		s.Assert().True(c.Emails[0].Primary, "the later entry must win")
	}
}

func (s *customerServiceTestSuite) TestUpdateNotFound() {
	ctx := s.testData.ctx
	payload := s.testData.payload

	s.customerRpsMock.On("FindByName", ctx, payload.Name).Return(nil, nil).Once()

	s.T().Log("customer does not exist - not found must be raised")
	{
		_, err := s.customerSvc.Update(ctx, payload)
		s.Assert().Error(err, "not found must be raised")

		var notFoundErr *apperrors.NotFoundErr
		s.Assert().ErrorAs(err, &notFoundErr, "error must be not found error")
		s.customerRpsMock.AssertNotCalled(s.T(), "Update", ctx, mock.Anything, mock.Anything)
	}
}

func (s *customerServiceTestSuite) TestUpdateReplacesEmailSet() {
	ctx := s.testData.ctx

	payload := &model.Customer{
		Name:      "John Doe",
		Emails:    []model.Email{{Address: "john.updated@gmail.com", Primary: true}},
		Phones:    s.testData.payload.Phones,
		Addresses: s.testData.payload.Addresses,
	}

	var appliedDiff *model.CustomerDiff
	s.customerRpsMock.On("FindByName", ctx, payload.Name).Return(s.persisted(), nil).Once()
	s.customerRpsMock.On("Update", ctx, mock.AnythingOfType("*model.Customer"), mock.AnythingOfType("*model.CustomerDiff")).
		Run(func(args mock.Arguments) {
			appliedDiff = args.Get(2).(*model.CustomerDiff)
		}).
		Return(nil).Once()
	s.customerCacheMock.On("EvictByName", ctx, payload.Name).Return(nil).Once()

	s.T().Log("desired email set must fully replace the persisted one")
	{
		c, err := s.customerSvc.Update(ctx, payload)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Len(c.Emails, 1, "persisted collection must contain exactly the desired email")
		s.Assert().Equal("john.updated@gmail.com", c.Emails[0].Address)

		s.Require().NotNil(appliedDiff, "repository must receive the diff")
		s.Assert().Len(appliedDiff.Emails.Insert, 1, "one email to insert")
		s.Assert().Len(appliedDiff.Emails.Delete, 2, "two emails to delete")
		s.Assert().NotEmpty(appliedDiff.Emails.Insert[0].ID, "inserted rows must get ids")
		s.Assert().Len(appliedDiff.Phones.Update, 2, "re-supplied phones are updates")
		s.Assert().Len(appliedDiff.Addresses.Update, 2, "re-supplied addresses are updates")
	}
}

func (s *customerServiceTestSuite) TestUpdateOmittedListsDeleteChildren() {
	ctx := s.testData.ctx

	payload := &model.Customer{Name: "John Doe"}

	s.customerRpsMock.On("FindByName", ctx, payload.Name).Return(s.persisted(), nil).Once()
	s.customerRpsMock.On("Update", ctx, mock.AnythingOfType("*model.Customer"), mock.AnythingOfType("*model.CustomerDiff")).Return(nil).Once()
	s.customerCacheMock.On("EvictByName", ctx, payload.Name).Return(nil).Once()

	s.T().Log("omitted child lists mean desired empty and delete everything")
	{
		c, err := s.customerSvc.Update(ctx, payload)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Empty(c.Emails, "emails must be gone")
		s.Assert().Empty(c.Phones, "phones must be gone")
		s.Assert().Empty(c.Addresses, "addresses must be gone")
	}
}

func (s *customerServiceTestSuite) TestUpdateEvictsCache() {
	ctx := s.testData.ctx
	payload := s.testData.payload

	s.customerRpsMock.On("FindByName", ctx, payload.Name).Return(s.persisted(), nil).Once()
	s.customerRpsMock.On("Update", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	s.customerCacheMock.On("EvictByName", ctx, payload.Name).Return(nil).Once()

	s.T().Log("successful update must evict the cached aggregate")
	{
		_, err := s.customerSvc.Update(ctx, payload)
		s.Assert().NoError(err, "no error must be raised")
		s.customerCacheMock.AssertCalled(s.T(), "EvictByName", ctx, payload.Name)
	}
}

func (s *customerServiceTestSuite) TestFindByNameFromCache() {
	ctx := s.testData.ctx
	persisted := s.persisted()

	s.customerCacheMock.On("FindByName", ctx, persisted.Name).Return(persisted, nil).Once()

	s.T().Log("customer must be served from cache")
	{
		_, err := s.customerSvc.FindByName(ctx, persisted.Name)
		s.Assert().NoError(err, "no error must be raised")
		s.customerRpsMock.AssertNotCalled(s.T(), "FindByName", ctx, persisted.Name)
	}
}

func (s *customerServiceTestSuite) TestFindByNameCached() {
	ctx := s.testData.ctx
	persisted := s.persisted()

	s.customerCacheMock.On("FindByName", ctx, persisted.Name).Return(nil, nil).Once()
	s.customerRpsMock.On("FindByName", ctx, persisted.Name).Return(persisted, nil).Once()
	s.customerCacheMock.On("Cache", ctx, persisted).Return(nil).Once()

	s.T().Log("customer read from the store must be cached")
	{
		c, err := s.customerSvc.FindByName(ctx, persisted.Name)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().NotNil(c, "customer must be found")
		s.customerCacheMock.AssertCalled(s.T(), "Cache", ctx, persisted)
	}
}

func (s *customerServiceTestSuite) TestDeleteByNameEvictsCache() {
	ctx := s.testData.ctx

	s.customerCacheMock.On("EvictByName", ctx, "John Doe").Return(nil).Once()
	s.customerRpsMock.On("DeleteByName", ctx, "John Doe").Return(nil).Once()

	s.T().Log("delete must evict cache and remove the aggregate")
	{
		err := s.customerSvc.DeleteByName(ctx, "John Doe")
		s.Assert().NoError(err, "no error must be raised")
	}
}

func (s *customerServiceTestSuite) TestUpdateRepositoryFailure() {
	ctx := s.testData.ctx
	payload := s.testData.payload

	s.customerRpsMock.On("FindByName", ctx, payload.Name).Return(s.persisted(), nil).Once()
	s.customerRpsMock.On("Update", ctx, mock.Anything, mock.Anything).Return(errors.New("store err")).Once()

	s.T().Log("persistence failure aborts the command, nothing is cached or evicted")
	{
		_, err := s.customerSvc.Update(ctx, payload)
		s.Assert().Error(err, "store error must be raised up")
		s.customerCacheMock.AssertNotCalled(s.T(), "EvictByName", ctx, payload.Name)
	}
}

// start customer service test suite
func TestCustomerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(customerServiceTestSuite))
}
