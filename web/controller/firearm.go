package controller

import (
	"errors"
	"strconv"

	"github.com/gogorichielab/ppcollection/web/service"

	"github.com/gin-gonic/gin"
)

// FirearmController serves the inventory CRUD, search/sort listing,
// pagination and CSV export.
type FirearmController struct {
	BaseController

	firearmService service.FirearmService
	settingService service.SettingService
}

func NewFirearmController(g *gin.RouterGroup) *FirearmController {
	a := &FirearmController{}
	a.initRouter(g)
	return a
}

func (a *FirearmController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/firearms")
	g.Use(a.checkLogin)

	g.GET("", a.list)
	g.GET("/page", a.page)
	g.GET("/export", a.export)
	g.GET("/:id", a.get)
	g.POST("", a.create)
	g.POST("/:id/update", a.update)
	g.POST("/:id/delete", a.remove)
}

// list returns all records, sorted and optionally filtered by the sort,
// dir and search query parameters.
func (a *FirearmController) list(c *gin.Context) {
	items, err := a.firearmService.All(
		c.Query("sort"),
		c.Query("dir"),
		c.Query("search"),
	)
	jsonObj(c, items, err)
}

func (a *FirearmController) page(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, err := strconv.Atoi(c.Query("perPage"))
	if err != nil || perPage < 1 {
		perPage, err = a.settingService.GetPageSize()
		if err != nil {
			perPage = 25
		}
	}

	result, err := a.firearmService.Paginate(page, perPage)
	jsonObj(c, result, err)
}

func (a *FirearmController) export(c *gin.Context) {
	items, err := a.firearmService.All("make", "asc", c.Query("search"))
	if err != nil {
		jsonMsg(c, "export failed", err)
		return
	}
	content, err := a.firearmService.ToCsv(items)
	if err != nil {
		jsonMsg(c, "export failed", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="firearms.csv"`)
	c.Data(200, "text/csv", []byte(content))
}

func (a *FirearmController) get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid id", err)
		return
	}
	item, err := a.firearmService.Get(id)
	jsonObj(c, item, err)
}

func (a *FirearmController) create(c *gin.Context) {
	input := &service.FirearmInput{}
	if err := c.ShouldBind(input); err != nil {
		jsonMsg(c, "invalid form data", err)
		return
	}

	id, err := a.firearmService.Create(input)
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		jsonObj(c, gin.H{"fieldErrors": validationErr.FieldErrors}, err)
		return
	}
	jsonMsgObj(c, "firearm created", gin.H{"id": id}, err)
}

func (a *FirearmController) update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid id", err)
		return
	}
	input := &service.FirearmInput{}
	if err := c.ShouldBind(input); err != nil {
		jsonMsg(c, "invalid form data", err)
		return
	}

	err = a.firearmService.Update(id, input)
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		jsonObj(c, gin.H{"fieldErrors": validationErr.FieldErrors}, err)
		return
	}
	jsonMsg(c, "firearm updated", err)
}

func (a *FirearmController) remove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid id", err)
		return
	}
	jsonMsg(c, "firearm deleted", a.firearmService.Remove(id))
}
