package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/tillwork/posadmin/internal/api/dto"
	"github.com/tillwork/posadmin/internal/filter"
	"github.com/tillwork/posadmin/internal/manager"
	"github.com/tillwork/posadmin/internal/workspace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PagesHandler drives the list pages of the caller's console session.
type PagesHandler struct {
	registry *workspace.Registry
}

// NewPagesHandler constructs handler.
func NewPagesHandler(registry *workspace.Registry) *PagesHandler {
	return &PagesHandler{registry: registry}
}

func (h *PagesHandler) page(c *fiber.Ctx) (workspace.Page, error) {
	principal, err := requirePrincipal(c)
	if err != nil {
		return nil, err
	}
	return h.registry.Page(c.UserContext(), principal.SessionID, param(c, "resource"))
}

// param copies a route parameter out of the pooled request buffer, which
// fasthttp reuses for the next request.
func param(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.Params(key))
}

func snapshot(c *fiber.Ctx, p workspace.Page) error {
	return c.JSON(fiber.Map{"data": p.View()})
}

// Resources handles GET /pages.
func (h *PagesHandler) Resources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.registry.Resources()})
}

// Get handles GET /pages/:resource.
func (h *PagesHandler) Get(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	return snapshot(c, p)
}

// Load handles POST /pages/:resource/load.
func (h *PagesHandler) Load(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	if err := p.Load(c.UserContext()); err != nil {
		return err
	}
	return snapshot(c, p)
}

// SetFilters handles PUT /pages/:resource/filters.
func (h *PagesHandler) SetFilters(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	var req dto.FilterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	p.SetFilterState(filter.State{Search: req.Search, Discrete: req.Filters})
	return snapshot(c, p)
}

// ClearFilters handles DELETE /pages/:resource/filters.
func (h *PagesHandler) ClearFilters(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	p.ClearFilters()
	return snapshot(c, p)
}

// Select handles POST /pages/:resource/select.
func (h *PagesHandler) Select(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	var req dto.SelectRequest
	if err := c.BodyParser(&req); err != nil || req.ID == "" {
		return fiber.NewError(http.StatusBadRequest, "id required")
	}
	if !p.Select(req.ID, req.Checked) {
		return fiber.NewError(http.StatusNotFound, fmt.Sprintf("%s is not in the current view", req.ID))
	}
	return c.JSON(fiber.Map{"data": dto.SelectionResponse{Selected: p.Selected()}})
}

// SelectAll handles POST /pages/:resource/select-all.
func (h *PagesHandler) SelectAll(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	var req dto.SelectAllRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	p.SelectAll(req.Checked)
	return c.JSON(fiber.Map{"data": dto.SelectionResponse{Selected: p.Selected()}})
}

// OpenCreate handles POST /pages/:resource/modal/create.
func (h *PagesHandler) OpenCreate(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	if !p.OpenCreate() {
		return fiber.NewError(http.StatusConflict, "clear the selection before creating")
	}
	return snapshot(c, p)
}

// OpenEdit handles POST /pages/:resource/modal/edit/:id.
func (h *PagesHandler) OpenEdit(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	if err := p.OpenEditByID(param(c, "id")); err != nil {
		return err
	}
	return snapshot(c, p)
}

// CloseModal handles DELETE /pages/:resource/modal.
func (h *PagesHandler) CloseModal(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	p.CloseModal()
	return c.SendStatus(http.StatusNoContent)
}

// SetForm handles PUT /pages/:resource/form. The body is merged onto the
// open form.
func (h *PagesHandler) SetForm(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	if err := p.SetFormJSON(c.Body()); err != nil {
		if errors.Is(err, manager.ErrNoModal) {
			return err
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return snapshot(c, p)
}

// Submit handles POST /pages/:resource/submit.
func (h *PagesHandler) Submit(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	saved, err := p.SubmitForm(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": saved})
}

// Delete handles DELETE /pages/:resource/items/:id.
func (h *PagesHandler) Delete(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	if err := p.Delete(c.UserContext(), param(c, "id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteSelected handles POST /pages/:resource/delete-selected.
func (h *PagesHandler) DeleteSelected(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	if err := p.DeleteSelected(c.UserContext()); err != nil {
		return err
	}
	return snapshot(c, p)
}

// ExportCSV handles GET /pages/:resource/export.csv.
func (h *PagesHandler) ExportCSV(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.ExportCSV(&buf); err != nil {
		return err
	}
	return attachment(c, "text/csv; charset=utf-8", p.Resource()+".csv", buf.Bytes())
}

// ExportXLSX handles GET /pages/:resource/export.xlsx.
func (h *PagesHandler) ExportXLSX(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.ExportXLSX(&buf); err != nil {
		return err
	}
	return attachment(c, xlsxContentType, p.Resource()+".xlsx", buf.Bytes())
}

// Import handles POST /pages/:resource/import. The CSV comes either as the
// multipart field "file" or as the raw body. A partly successful import
// answers 207 with the per-row errors.
func (h *PagesHandler) Import(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	var src io.Reader
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "file required")
		}
		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "unreadable file")
		}
		defer f.Close()
		src = f
	} else {
		if len(c.Body()) == 0 {
			return fiber.NewError(http.StatusBadRequest, "empty import")
		}
		src = bytes.NewReader(c.Body())
	}

	res, err := p.ImportCSV(c.UserContext(), src)
	if err != nil {
		if errors.Is(err, manager.ErrImportFailed) && res.Imported > 0 {
			return c.Status(http.StatusMultiStatus).JSON(fiber.Map{"data": res})
		}
		return err
	}
	return c.JSON(fiber.Map{"data": res})
}

// DismissToast handles DELETE /pages/:resource/toast.
func (h *PagesHandler) DismissToast(c *fiber.Ctx) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	p.Toasts().Dismiss()
	return c.SendStatus(http.StatusNoContent)
}

func attachment(c *fiber.Ctx, contentType, name string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(body)
}
