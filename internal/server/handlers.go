package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Sumatoshi-tech/punctscan/internal/analyzer"
	"github.com/Sumatoshi-tech/punctscan/internal/chart"
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
	"github.com/Sumatoshi-tech/punctscan/internal/report"
)

// Form and query parameter names.
const (
	formFile   = "file"
	queryMarks = "marks"
)

// Download names and content types.
const (
	recordPNGFilename = "graph.png"

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypePNG  = "image/png"
	contentTypeHTML = "text/html; charset=utf-8"
)

// multipartMemory bounds the in-memory part of a parsed multipart form.
const multipartMemory = 8 << 20

// categoryInfo is one entry of GET /api/categories.
type categoryInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (s *Server) handleAnalyze(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()

	hr.Body = http.MaxBytesReader(rw, hr.Body, s.opts.MaxUploadBytes)

	err := hr.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isTooLarge(err) {
			writeKind(ctx, rw, kindPayloadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", s.opts.MaxUploadBytes))

			return
		}

		writeKind(ctx, rw, analyzer.KindInvalidInput, "malformed multipart form: "+err.Error())

		return
	}

	file, header, err := hr.FormFile(formFile)
	if err != nil {
		writeKind(ctx, rw, analyzer.KindInvalidInput, msgNoFile)

		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeKind(ctx, rw, analyzer.KindInvalidInput, "read upload: "+err.Error())

		return
	}

	record, err := s.svc.Analyze(ctx, data, header.Filename)
	if err != nil {
		s.writeError(ctx, rw, err, "")

		return
	}

	writeJSON(ctx, rw, http.StatusOK, record)
}

func (s *Server) handleResults(rw http.ResponseWriter, hr *http.Request) {
	records := s.svc.Results(hr.Context())
	if records == nil {
		records = []punctuation.Record{}
	}

	writeJSON(hr.Context(), rw, http.StatusOK, records)
}

func (s *Server) handleDownloadCSV(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()

	data, err := s.svc.Report(ctx, report.FormatCSV)
	if err != nil {
		s.writeError(ctx, rw, err, msgNoCSV)

		return
	}

	writeAttachment(rw, contentTypeCSV, report.CSVFilename, data)
}

func (s *Server) handleDownloadGraph(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()

	categories, err := selectionFromQuery(hr)
	if err != nil {
		s.writeError(ctx, rw, err, "")

		return
	}

	data, err := s.svc.ExportChart(ctx, analyzer.ChartRequest{Categories: categories})
	if err != nil {
		s.writeError(ctx, rw, err, msgNoGraph)

		return
	}

	writeAttachment(rw, contentTypePNG, chart.PNGFilename, data)
}

func (s *Server) handleDownloadGraphHTML(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()

	categories, err := selectionFromQuery(hr)
	if err != nil {
		s.writeError(ctx, rw, err, "")

		return
	}

	data, err := s.svc.ExportChartHTML(ctx, analyzer.ChartRequest{Categories: categories})
	if err != nil {
		s.writeError(ctx, rw, err, msgNoGraph)

		return
	}

	writeAttachment(rw, contentTypeHTML, chart.HTMLFilename, data)
}

func (s *Server) handleRecordGraph(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()

	body, err := io.ReadAll(http.MaxBytesReader(rw, hr.Body, s.opts.MaxUploadBytes))
	if err != nil {
		if isTooLarge(err) {
			writeKind(ctx, rw, kindPayloadTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", s.opts.MaxUploadBytes))

			return
		}

		writeKind(ctx, rw, analyzer.KindInvalidInput, "read body: "+err.Error())

		return
	}

	req, err := s.chartIn.Decode(body)
	if err != nil {
		s.writeError(ctx, rw, err, "")

		return
	}

	data, err := s.svc.ExportChart(ctx, req)
	if err != nil {
		s.writeError(ctx, rw, err, "")

		return
	}

	writeAttachment(rw, contentTypePNG, recordPNGFilename, data)
}

func (s *Server) handleCategories(rw http.ResponseWriter, hr *http.Request) {
	all := punctuation.AllCategories()
	out := make([]categoryInfo, 0, len(all))

	for _, c := range all {
		out = append(out, categoryInfo{Name: c.String(), Label: c.Label()})
	}

	writeJSON(hr.Context(), rw, http.StatusOK, out)
}

func (s *Server) handleNotFound(rw http.ResponseWriter, hr *http.Request) {
	writeKind(hr.Context(), rw, kindNotFound, msgNoRoute)
}

// selectionFromQuery reads ?marks=a,b. An absent parameter yields nil (the
// default selection); a present but empty one yields an empty selection.
func selectionFromQuery(hr *http.Request) ([]punctuation.Category, error) {
	values, ok := hr.URL.Query()[queryMarks]
	if !ok {
		return nil, nil
	}

	var names []string
	for _, v := range values {
		names = append(names, strings.Split(v, ",")...)
	}

	return parseSelection(names)
}

func writeAttachment(rw http.ResponseWriter, contentType, filename string, data []byte) {
	rw.Header().Set("Content-Type", contentType)
	rw.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	rw.WriteHeader(http.StatusOK)

	_, _ = rw.Write(data)
}
