package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"axiapac.com/attendance/attendance/core"
	"axiapac.com/attendance/infrastructure/filesystem"
	"axiapac.com/attendance/web/common"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const maxWorkbookSize = 20 << 20

type UploadEndpoint struct {
	files     filesystem.FileSystem
	key       string
	sheetName string
}

// RegisterUpload mounts PUT /sync/workbook, which replaces the stored
// workbook that the workbook sheet backend reads from.
func RegisterUpload(r *gin.RouterGroup, files filesystem.FileSystem, key, sheetName string) {
	endpoint := &UploadEndpoint{files: files, key: key, sheetName: sheetName}
	r.PUT("/sync/workbook", endpoint.Upload)
}

// Upload accepts a multipart "file" holding an .xlsx with the attendance tab.
func (ep *UploadEndpoint) Upload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxWorkbookSize); err != nil {
		c.JSON(http.StatusBadRequest, common.NewCodedErrorResponse(string(core.CodeValidation), err.Error()))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewCodedErrorResponse(string(core.CodeValidation), "Field 'file' is required"))
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, common.NewCodedErrorResponse(string(core.CodeValidation), fmt.Sprintf("unsupported file type %q", ext)))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewCodedErrorResponse(string(core.CodeValidation), err.Error()))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewCodedErrorResponse(string(core.CodeValidation), err.Error()))
		return
	}

	if err := ep.check(data); err != nil {
		c.JSON(http.StatusBadRequest, common.NewCodedErrorResponse(string(core.CodeValidation), err.Error()))
		return
	}

	if err := ep.files.WriteFile(c.Request.Context(), ep.key, data, header.Header.Get("Content-Type")); err != nil {
		c.JSON(http.StatusBadGateway, common.NewCodedErrorResponse(string(core.CodeUpstream), err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(fmt.Sprintf("Uploaded %s", header.Filename), gin.H{
		"key":   ep.key,
		"bytes": len(data),
	}))
}

// check opens the workbook and makes sure the attendance tab exists.
func (ep *UploadEndpoint) check(data []byte) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not a valid workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(ep.sheetName); err != nil || idx < 0 {
		return fmt.Errorf("workbook has no sheet named %q", ep.sheetName)
	}
	return nil
}
