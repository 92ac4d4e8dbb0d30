package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
	"github.com/kama950028/KadrSp/pkg/response"
)

// Ingestion error codes
const (
	codeMalformedDocument   = 20001
	codeSchemaInference     = 20002
	codeFilenameFormat      = 20003
	codeProgramNotFound     = 20004
	codeRecordNormalization = 20005
	codeUploadTooLarge      = 20006
	codeUploadMissing       = 20007

	codeStorage = 50000
)

// writeIngestError maps the ingestion error taxonomy to a response envelope.
// Storage failures answer 500 with the underlying message. It reports false
// when err is outside the taxonomy, leaving the caller to answer.
func writeIngestError(c *gin.Context, err error) bool {
	var (
		md *pkgerrors.MalformedDocumentError
		si *pkgerrors.SchemaInferenceError
		ff *pkgerrors.FilenameFormatError
		pn *pkgerrors.ProgramNotFoundError
		rn *pkgerrors.RecordNormalizationError
		st *pkgerrors.StorageError
	)
	advice := pkgerrors.Advice(err)
	switch {
	case errors.As(err, &md):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, codeMalformedDocument, err.Error(), nil, advice)
	case errors.As(err, &si):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, codeSchemaInference, err.Error(),
			gin.H{"missing_field": si.Field, "headers": si.Headers}, advice)
	case errors.As(err, &ff):
		response.ErrorWithDetails(c, http.StatusBadRequest, codeFilenameFormat, err.Error(),
			gin.H{"filename": ff.Filename}, advice)
	case errors.As(err, &pn):
		response.ErrorWithDetails(c, http.StatusNotFound, codeProgramNotFound, err.Error(),
			gin.H{"prefix": pn.Prefix, "available": pn.Available}, advice)
	case errors.As(err, &rn):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, codeRecordNormalization, err.Error(),
			gin.H{"row": rn.Row}, "")
	case errors.As(err, &st):
		response.Error(c, http.StatusInternalServerError, codeStorage, st.Error())
	default:
		return false
	}
	return true
}
