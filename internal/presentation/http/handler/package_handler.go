package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/pricing"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
)

// PackageHandler handles package pricing requests
type PackageHandler struct {
	packageService *service.PackageService
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(packageService *service.PackageService) *PackageHandler {
	return &PackageHandler{packageService: packageService}
}

// packagePricingResponse pairs a stored package with its computed pricing
type packagePricingResponse struct {
	Package *entity.Package `json:"package"`
	Pricing *pricing.Result `json:"pricing"`
}

// ComputePricing prices an ad hoc composition without storing it
func (h *PackageHandler) ComputePricing(c *gin.Context) {
	var req request.PackagePricingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.packageService.ComputePackagePricing(c.Request.Context(), compositionOf(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Package priced successfully", result)
}

// Pricing handles pricing a stored package
func (h *PackageHandler) Pricing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid package ID")
		return
	}

	pkg, result, err := h.packageService.PackagePricing(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Package priced successfully", packagePricingResponse{Package: pkg, Pricing: result})
}

// Create handles storing a package
func (h *PackageHandler) Create(c *gin.Context) {
	var req request.CreatePackageRequest
	if !bindJSON(c, &req) {
		return
	}

	comp := compositionOf(&req.PackagePricingRequest)
	pkg, result, err := h.packageService.CreatePackage(c.Request.Context(), &service.CreatePackageInput{
		Name:     req.Name,
		Price:    comp.Price,
		Services: comp.Services,
		Groups:   comp.Groups,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Package created successfully", packagePricingResponse{Package: pkg, Pricing: result})
}

func compositionOf(req *request.PackagePricingRequest) pricing.Composition {
	comp := pricing.Composition{
		Price:    req.Price,
		Services: linesOf(req.Services),
	}
	for _, g := range req.Groups {
		comp.Groups = append(comp.Groups, pricing.Group{Label: g.Label, Options: linesOf(g.Options)})
	}
	return comp
}

func linesOf(reqs []request.PackageLineRequest) []pricing.Line {
	lines := make([]pricing.Line, len(reqs))
	for i, l := range reqs {
		lines[i] = pricing.Line{
			ServiceID: l.ServiceID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return lines
}
