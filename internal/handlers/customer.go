package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "customer-registry/internal/errors"
	"customer-registry/internal/model"
	"customer-registry/internal/service"
)

const (
	createdMessage = "Customer created successfully"
	updatedMessage = "Customer updated successfully"
)

type emailPayload struct {
	EmailAddress string `json:"email_address" validate:"required,email"`
	IsPrimary    int    `json:"is_primary" validate:"oneof=0 1"`
}

type phonePayload struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	IsPrimary   int    `json:"is_primary" validate:"oneof=0 1"`
}

type addressPayload struct {
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	Country     string `json:"country" validate:"required"`
	Pincode     string `json:"pincode" validate:"required"`
}

type manageCustomer struct {
	CustomerName string           `json:"customer_name" validate:"required"`
	Salutation   *string          `json:"salutation"`
	SalesPerson  *string          `json:"sales_person"`
	Emails       []emailPayload   `json:"emails" validate:"dive"`
	PhoneNumbers []phonePayload   `json:"phone_numbers" validate:"dive"`
	Addresses    []addressPayload `json:"addresses" validate:"dive"`
}

type customerCreated struct {
	Message    string `json:"message"`
	CustomerID string `json:"customer_id"`
}

type customerUpdated struct {
	Message      string `json:"message"`
	CustomerName string `json:"customer_name"`
}

// CustomerHTTPHandler is http handler for customer endpoint
type CustomerHTTPHandler struct {
	customerSvc service.CustomerService
}

// NewCustomerHTTPHandler builds new CustomerHTTPHandler
func NewCustomerHTTPHandler(customerSvc service.CustomerService) *CustomerHTTPHandler {
	return &CustomerHTTPHandler{customerSvc: customerSvc}
}

// Manage is the single customer management entrypoint, the HTTP verb
// selects the command: POST creates, PUT updates, anything else is
// rejected as a validation failure.
// @Summary     Manage customer
// @Description Creates customer on POST, updates existing one on PUT
// @Tags        customers
// @Accept      json
// @Produce     json
// @Param       manageCustomer body	 manageCustomer true "Customer data"
// @Success     200    		  {object} customerUpdated
// @Success     201    		  {object} customerCreated
// @Failure     400    		  {object} echo.HTTPError
// @Failure     404    		  {object} echo.HTTPError
// @Failure     409    		  {object} echo.HTTPError
// @Router      /api/v1/customers [post]
// @Router      /api/v1/customers [put]
func (h *CustomerHTTPHandler) Manage(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodPost:
		return h.create(c)
	case http.MethodPut:
		return h.update(c)
	default:
		return apperrors.NewValidationErr("invalid method")
	}
}

// Get gets customer
// @Summary     Get single customer by name
// @Description Returns single customer with provided name
// @Tags        customers
// @Produce     json
// @Param       name   path 	string true "Customer name"
// @Success     200    {object} model.Customer
// @Failure     404    {object} echo.HTTPError
// @Failure     500    {object} echo.HTTPError
// @Router      /api/v1/customers/{name} [get]
func (h *CustomerHTTPHandler) Get(c echo.Context) error {
	name := c.Param("name")

	customer, err := h.customerSvc.FindByName(c.Request().Context(), name)
	if err != nil {
		return err
	}

	if customer == nil {
		return apperrors.NewNotFoundErr("customer " + name + " does not exist")
	}
	return c.JSON(http.StatusOK, customer)
}

// GetAll gets all customers
// @Summary     Get all customers
// @Description Returns all customers
// @Tags        customers
// @Produce     json
// @Success     200    {array}  model.Customer
// @Failure     500    {object} echo.HTTPError
// @Router      /api/v1/customers [get]
func (h *CustomerHTTPHandler) GetAll(c echo.Context) error {
	customers, err := h.customerSvc.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// DeleteByName deletes customer
// @Summary     Delete customer by name
// @Description Deletes customer with provided name and all its child records
// @Tags        customers
// @Param       name   path 	string true "Customer name"
// @Success     204    "Successful status code"
// @Failure     404    {object} echo.HTTPError
// @Failure     500    {object} echo.HTTPError
// @Router      /api/v1/customers/{name} [delete]
func (h *CustomerHTTPHandler) DeleteByName(c echo.Context) error {
	if err := h.customerSvc.DeleteByName(c.Request().Context(), c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CustomerHTTPHandler) create(c echo.Context) error {
	var mc manageCustomer
	if err := c.Bind(&mc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(&mc); err != nil {
		return err
	}

	customer, err := h.customerSvc.Create(c.Request().Context(), mc.toModel())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, &customerCreated{
		Message:    createdMessage,
		CustomerID: customer.Name,
	})
}

func (h *CustomerHTTPHandler) update(c echo.Context) error {
	var mc manageCustomer
	if err := c.Bind(&mc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(&mc); err != nil {
		return err
	}

	customer, err := h.customerSvc.Update(c.Request().Context(), mc.toModel())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &customerUpdated{
		Message:      updatedMessage,
		CustomerName: customer.Name,
	})
}

func (mc *manageCustomer) toModel() *model.Customer {
	customer := &model.Customer{
		Name:        mc.CustomerName,
		Salutation:  mc.Salutation,
		SalesPerson: mc.SalesPerson,
	}

	for _, e := range mc.Emails {
		customer.Emails = append(customer.Emails, model.Email{
			Address: e.EmailAddress,
			Primary: e.IsPrimary != 0,
		})
	}

	for _, p := range mc.PhoneNumbers {
		customer.Phones = append(customer.Phones, model.Phone{
			Number:  p.PhoneNumber,
			Primary: p.IsPrimary != 0,
		})
	}

	for _, a := range mc.Addresses {
		customer.Addresses = append(customer.Addresses, model.Address{
			Line:    a.AddressLine,
			City:    a.City,
			State:   a.State,
			Country: a.Country,
			Pincode: a.Pincode,
		})
	}

	return customer
}
