package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jpark/addressbook-backend/internal/app/model"
	"github.com/jpark/addressbook-backend/internal/app/service"
	apperrors "github.com/jpark/addressbook-backend/internal/errors"
	"github.com/jpark/addressbook-backend/internal/middleware"
	"github.com/jpark/addressbook-backend/internal/websocket"
	"github.com/jpark/addressbook-backend/pkg/geo"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

type AddressController struct {
	addressService service.AddressService
	hub            *websocket.Hub
}

// NewAddressController creates an AddressController. hub may be nil when the
// change feed is disabled (tests, CLI tooling).
func NewAddressController(addressService service.AddressService, hub *websocket.Hub) *AddressController {
	return &AddressController{
		addressService: addressService,
		hub:            hub,
	}
}

// Coordinates use pointer fields so that a legitimate 0.0 still satisfies
// the required binding.
type CreateAddressRequest struct {
	Street    string   `json:"street" binding:"required,min=1,max=200"`
	City      string   `json:"city" binding:"required,min=1,max=100"`
	State     string   `json:"state" binding:"required,min=1,max=100"`
	ZipCode   string   `json:"zip_code" binding:"required,min=1,max=20"`
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

type UpdateAddressRequest struct {
	Street    *string  `json:"street" binding:"omitempty,min=1,max=200"`
	City      *string  `json:"city" binding:"omitempty,min=1,max=100"`
	State     *string  `json:"state" binding:"omitempty,min=1,max=100"`
	ZipCode   *string  `json:"zip_code" binding:"omitempty,min=1,max=20"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
}

type DistanceSearchRequest struct {
	Latitude   *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	DistanceKm float64  `json:"distance_km" binding:"required,gt=0"`
}

// CreateAddress creates a new address
// POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create address request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	address := &model.Address{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}

	if err := ctrl.addressService.CreateAddress(address); err != nil {
		log.Error("Failed to create address", err, nil)
		apperrors.InternalError(c, "Failed to create address")
		return
	}

	log.Info("Address created successfully", map[string]interface{}{
		"address_id": address.ID,
	})

	ctrl.publish(websocket.Event{Type: websocket.EventAddressCreated, Address: address})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Address created successfully",
		"address": address,
	})
}

// ListAddresses returns stored addresses with pagination
// GET /api/v1/addresses?offset=0&limit=100
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid offset")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid limit")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	addresses, err := ctrl.addressService.GetAllAddresses(offset, limit)
	if err != nil {
		log.Error("Failed to fetch addresses", err, nil)
		apperrors.InternalError(c, "Failed to fetch addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// GetAddress returns a single address by ID
// GET /api/v1/addresses/:id
func (ctrl *AddressController) GetAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.parseID(c)
	if !ok {
		return
	}

	address, err := ctrl.addressService.GetAddressByID(id)
	if err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			apperrors.NotFound(c, apperrors.AddressNotFound, fmt.Sprintf("Address with ID %d not found", id))
			return
		}
		log.Error("Failed to fetch address", err, map[string]interface{}{
			"address_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address,
	})
}

// UpdateAddress updates an existing address. Only provided fields change.
// PUT /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.parseID(c)
	if !ok {
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update address request", map[string]interface{}{
			"address_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	address, err := ctrl.addressService.UpdateAddress(id, &service.AddressUpdate{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			apperrors.NotFound(c, apperrors.AddressNotFound, fmt.Sprintf("Address with ID %d not found", id))
			return
		}
		log.Error("Failed to update address", err, map[string]interface{}{
			"address_id": id,
		})
		apperrors.InternalError(c, "Failed to update address")
		return
	}

	log.Info("Address updated successfully", map[string]interface{}{
		"address_id": id,
	})

	ctrl.publish(websocket.Event{Type: websocket.EventAddressUpdated, Address: address})

	c.JSON(http.StatusOK, gin.H{
		"message": "Address updated successfully",
		"address": address,
	})
}

// DeleteAddress deletes an address
// DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := ctrl.parseID(c)
	if !ok {
		return
	}

	if err := ctrl.addressService.DeleteAddress(id); err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			apperrors.NotFound(c, apperrors.AddressNotFound, fmt.Sprintf("Address with ID %d not found", id))
			return
		}
		log.Error("Failed to delete address", err, map[string]interface{}{
			"address_id": id,
		})
		apperrors.InternalError(c, "Failed to delete address")
		return
	}

	log.Info("Address deleted successfully", map[string]interface{}{
		"address_id": id,
	})

	ctrl.publish(websocket.Event{Type: websocket.EventAddressDeleted, ID: id})

	c.JSON(http.StatusOK, gin.H{
		"message": "Address deleted successfully",
	})
}

// SearchByDistance finds all addresses within distance_km of a reference
// point. Results keep storage order and include the boundary.
// POST /api/v1/addresses/search
func (ctrl *AddressController) SearchByDistance(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req DistanceSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid distance search request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	reference := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	addresses, err := ctrl.addressService.SearchByDistance(reference, req.DistanceKm)
	if err != nil {
		log.Error("Failed to search addresses by distance", err, nil)
		apperrors.InternalError(c, "Failed to search addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

func (ctrl *AddressController) parseID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid address ID format", map[string]interface{}{
			"address_id": idStr,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid address ID")
		return 0, false
	}
	return uint(id), true
}

func (ctrl *AddressController) publish(event websocket.Event) {
	if ctrl.hub != nil {
		ctrl.hub.Publish(event)
	}
}

// ExportController serves spreadsheet exports of the address book
type ExportController struct {
	exportService service.ExportService
}

func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

// ExportAddresses streams the full address book as an .xlsx workbook
// GET /api/v1/addresses/export
func (ctrl *ExportController) ExportAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.exportService.ExportToExcel()
	if err != nil {
		log.Error("Failed to export addresses", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ExportFailed, "Failed to export addresses")
		return
	}

	filename := fmt.Sprintf("addresses-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
