package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spareshop-api/dtos"
	"spareshop-api/services"
	"spareshop-api/utils/apperror"
	"spareshop-api/utils/response"
	"spareshop-api/utils/upload"
)

type SparepartController struct {
	spareparts services.SparepartService
	images     *upload.ImageStore
}

func NewSparepartController(spareparts services.SparepartService, images *upload.ImageStore) *SparepartController {
	return &SparepartController{spareparts: spareparts, images: images}
}

func (sc *SparepartController) GetSpareparts(c *gin.Context) {
	var filter dtos.SparepartFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, bindError(err))
		return
	}

	parts, meta, err := sc.spareparts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "Success",
		"data":   parts,
		"meta":   meta,
	})
}

func (sc *SparepartController) GetSparepartByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	part, err := sc.spareparts.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", part)
}

func (sc *SparepartController) CreateSparepart(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dtos.SparepartInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	image, err := sc.saveImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if image == "" {
		response.Error(c, apperror.Validation("image is required"))
		return
	}

	part, err := sc.spareparts.Create(c.Request.Context(), actor, input, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "sparepart created", part)
}

func (sc *SparepartController) UpdateSparepart(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dtos.SparepartInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	image, err := sc.saveImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	part, err := sc.spareparts.Update(c.Request.Context(), actor, id, input, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "sparepart updated", part)
}

func (sc *SparepartController) DeleteSparepart(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := sc.spareparts.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "sparepart deleted", nil)
}

// saveImage stores the optional "image" form file and returns its name, or ""
// when the request carries none.
func (sc *SparepartController) saveImage(c *gin.Context) (string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", apperror.Wrap(apperror.KindValidation, err, "invalid image upload")
	}
	return sc.images.Save(c, fh)
}
