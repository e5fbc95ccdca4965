package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

// CustomerHandler handles HTTP requests for customer operations.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// List returns every stored customer in insertion order.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Customer
// @Failure      401  {object}  errorEnvelope
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	customers, err := h.service.ListCustomers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// Search matches q against name, contact and requirement.
//
// @Summary      Search customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Case-insensitive substring"
// @Success      200  {array}   domain.Customer
// @Failure      401  {object}  errorEnvelope
// @Router       /api/customers/search [get]
func (h *CustomerHandler) Search(c echo.Context) error {
	customers, err := h.service.SearchCustomers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// Get returns a single customer.
//
// @Summary      Get customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  domain.Customer
// @Failure      401  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	customer, err := h.service.GetCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// Create adds a customer. Omitted fields take their defaults.
//
// @Summary      Create customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCustomerRequest  true  "Customer fields"
// @Success      200   {object}  customerMutationResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	var req createCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	customer, err := h.service.CreateCustomer(c.Request().Context(), toCreateCustomerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customerMutationResponse{
		Status:   "ok",
		Message:  "customer added",
		Customer: customer,
	})
}

// Update merges the provided fields into an existing customer.
//
// @Summary      Update customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Customer ID"
// @Param        body  body      updateCustomerRequest  true  "Fields to change"
// @Success      200   {object}  customerMutationResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c echo.Context) error {
	var req updateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	customer, err := h.service.UpdateCustomer(c.Request().Context(), c.Param("id"), toUpdateCustomerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customerMutationResponse{
		Status:   "ok",
		Message:  "customer updated",
		Customer: customer,
	})
}

// Delete removes a customer.
//
// @Summary      Delete customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  statusMessageResponse
// @Failure      401  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteCustomer(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusMessageResponse{Status: "ok", Message: "customer deleted"})
}
