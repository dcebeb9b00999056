package http

import (
	"errors"
	"html/template"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/report"
	"expensetracker/internal/services"
)

type balanceData struct {
	Text  string
	State string
}

type reportData struct {
	Title string
	Lines []string
}

type indexData struct {
	Kinds          []core.Kind
	Categories     []core.Category
	Balance        balanceData
	Rows           []transactionRow
	ReportFileName string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if !allowMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)

	data := indexData{
		Kinds:          core.Kinds(),
		Categories:     core.Categories(),
		ReportFileName: attachmentName(s.tracker.ReportFileName()),
	}

	// A failing store still renders the form.
	if bal, err := s.tracker.CurrentBalance(ctx); err != nil {
		logger.ErrorContext(ctx, "Balance unavailable", log.FieldOperation, log.OpBalance, log.FieldError, err)
	} else {
		data.Balance = balanceData{Text: bal.Text, State: string(bal.State)}
	}
	if txs, err := s.tracker.ListTransactions(ctx); err != nil {
		logger.ErrorContext(ctx, "Transactions unavailable", log.FieldOperation, log.OpList, log.FieldError, err)
	} else {
		data.Rows = toRows(txs, s.tracker.CurrencySymbol())
	}

	s.render(w, r, "index.html", data)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()
	logger := log.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "Parse form error", log.FieldError, err)
		BadRequestError(services.MsgGeneric).Write(w)
		return
	}

	kind, kindErr := core.ParseKind(r.Form.Get("kind"))
	category, catErr := core.ParseCategory(r.Form.Get("category"))
	if err := errors.Join(kindErr, catErr); services.IsInvalidSelection(err) {
		logger.WarnContext(ctx, "Invalid selection", log.FieldError, err)
		BadRequestError(services.MsgGeneric).Write(w)
		return
	}

	tx, err := s.tracker.AddTransaction(ctx, services.AddTransactionInput{
		Amount:   sanitizeInput(r.Form.Get("amount")),
		Kind:     kind,
		Category: category,
	})
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		UnprocessableEntityError(services.UserMessage(err)).Write(w)
		return
	case err != nil:
		logger.ErrorContext(ctx, "Transaction append failed", log.FieldOperation, log.OpAppend, log.FieldError, err)
		InternalServerError(services.UserMessage(err)).Write(w)
		return
	}

	s.invalidateReports()

	year, month, _ := tx.Date.Date()
	NewHTMXResponse().
		TriggerTransactionCreated(tx.ID, year, int(month)).
		TriggerBalanceRefresh().
		TriggerReportRefresh(year, int(month)).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction added").
		BodyHTML(`<div class="success">` +
			template.HTMLEscapeString(string(tx.Kind)) + ` of ` +
			template.HTMLEscapeString(tx.Amount.Format(s.tracker.CurrencySymbol())) + ` recorded (` +
			template.HTMLEscapeString(string(tx.Category)) + `)</div>`).
		Write(w)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	bal, err := s.tracker.CurrentBalance(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Balance unavailable", log.FieldError, err)
		InternalServerError(services.UserMessage(err)).Write(w)
		return
	}
	s.render(w, r, "balance", balanceData{Text: bal.Text, State: string(bal.State)})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	txs, err := s.tracker.ListTransactions(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transactions unavailable", log.FieldError, err)
		InternalServerError(services.UserMessage(err)).Write(w)
		return
	}
	s.render(w, r, "transactions", toRows(txs, s.tracker.CurrencySymbol()))
}

// monthlyReport returns the current month's report, served from the cache
// until the next append or TTL expiry.
func (s *Server) monthlyReport(r *http.Request) (services.MonthlyReport, error) {
	ctx := r.Context()
	key := periodKey(s.tracker.Now())

	if rep, ok := s.reportCache.Get(key); ok {
		log.FromContext(ctx).DebugContext(ctx, "Monthly report cache hit", "period", key)
		return rep, nil
	}

	gen := s.reportGeneration()
	rep, err := s.tracker.ViewMonthlyReport(ctx)
	if err != nil {
		return services.MonthlyReport{}, err
	}
	if !s.storeReport(key, gen, rep) {
		log.FromContext(ctx).DebugContext(ctx, "Monthly report outdated by append, not cached", "period", key)
	}
	return rep, nil
}

func (s *Server) reportGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.reportGen
}

// storeReport caches rep unless an append happened after gen was read.
func (s *Server) storeReport(key string, gen uint64, rep services.MonthlyReport) bool {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if gen != s.reportGen {
		return false
	}
	s.reportCache.Set(key, rep)
	return true
}

func (s *Server) invalidateReports() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.reportGen++
	s.reportCache.Purge()
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	rep, err := s.monthlyReport(r)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Monthly report failed", log.FieldOperation, log.OpReport, log.FieldError, err)
		InternalServerError(services.UserMessage(err)).Write(w)
		return
	}

	s.render(w, r, "monthly_report", reportData{
		Title: report.SummaryTitle,
		Lines: report.Lines(rep.Totals, s.tracker.CurrencySymbol()),
	})
}

// handleDownloadReport streams the export file body as an attachment; the
// browser's save dialog picks the destination.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()
	rep, err := s.monthlyReport(r)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Report download failed", log.FieldOperation, log.OpExport, log.FieldError, err)
		InternalServerError(services.MsgExportFailed).Write(w)
		return
	}

	body := s.tracker.FileContent(rep.Totals)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachmentName(s.tracker.ReportFileName())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)

	log.FromContext(ctx).InfoContext(ctx, "Report downloaded",
		log.NewFields().
			WithOperation(log.OpExport).
			WithPeriod(rep.Totals.Year, int(rep.Totals.Month)).
			ToSlice()...)
}

// handleExportReport writes the report into the export directory. Only a
// bare file name is accepted; a blank one uses the configured default.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		BadRequestError(services.MsgGeneric).Write(w)
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	if name == "" {
		name = s.tracker.ReportFileName()
	}
	path, err := exportTarget(s.exportDir, name)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Rejected export name", log.FieldOperation, log.OpExport, log.FieldError, err)
		BadRequestError(services.MsgExportFailed).Write(w)
		return
	}

	if _, err := s.tracker.ExportMonthlyReport(ctx, path); err != nil {
		InternalServerError(services.UserMessage(err)).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerReportExported(name).
		TriggerSuccessNotification(services.MsgExportSuccess).
		BodyHTML(`<div class="success">` + services.MsgExportSuccess + `</div>`).
		Write(w)
}
