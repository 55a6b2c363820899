package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finbook/internal/core"
	"finbook/internal/storage"
)

// maxBodyBytes caps request bodies; ledger payloads are tiny.
const maxBodyBytes = 1 << 20

// userID extracts the authenticated user from the X-User-ID header. The
// identity collaborator upstream sets it; this service trusts it.
func userID(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if v == "" {
		return 0, fmt.Errorf("missing X-User-ID header")
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("malformed X-User-ID header")
	}
	return id, nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	v := r.PathValue("id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", core.ErrInvalidArgument, v)
	}
	return id, nil
}

// decodeJSON strictly decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	return nil
}

// parseYearMonth extracts year and month from query parameters, defaulting
// to the current month.
func parseYearMonth(r *http.Request) (year, month int) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	return year, month
}

// parseTransactionFilter builds the list filter from query parameters.
func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	var filter storage.TransactionFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		typ := core.TransactionType(v)
		if !typ.Valid() {
			return filter, core.ErrBadEntryType
		}
		filter.Type = &typ
	}
	if v := strings.TrimSpace(q.Get("accountId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("%w: bad accountId %q", core.ErrInvalidArgument, v)
		}
		filter.AccountID = &id
	}
	if v := strings.TrimSpace(q.Get("categoryId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("%w: bad categoryId %q", core.ErrInvalidArgument, v)
		}
		filter.CategoryID = &id
	}
	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return filter, err
		}
		filter.Start = &d
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return filter, err
		}
		filter.End = &d
	}
	return filter, nil
}

type createAccountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	OpeningBalance string `json:"openingBalance"`
	Description    string `json:"description"`
}

func (req createAccountRequest) toSpec() (core.AccountSpec, error) {
	spec := core.AccountSpec{
		Name:        strings.TrimSpace(req.Name),
		Type:        core.AccountType(req.Type),
		Description: strings.TrimSpace(req.Description),
	}
	if req.OpeningBalance != "" {
		opening, err := core.ParseMoney(req.OpeningBalance)
		if err != nil {
			return core.AccountSpec{}, err
		}
		spec.OpeningBalance = opening
	}
	return spec, nil
}

type updateAccountRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}

func (req updateAccountRequest) toPatch() core.AccountPatch {
	patch := core.AccountPatch{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Type != nil {
		t := core.AccountType(*req.Type)
		patch.Type = &t
	}
	return patch
}

type createTransactionRequest struct {
	AccountID        int64  `json:"accountId"`
	CategoryID       *int64 `json:"categoryId"`
	Amount           string `json:"amount"`
	Type             string `json:"type"`
	Date             string `json:"date"`
	Note             string `json:"note"`
	ReceiptReference string `json:"receiptReference"`
}

func (req createTransactionRequest) toSpec() (core.TransactionSpec, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.TransactionSpec{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.TransactionSpec{}, err
	}
	return core.TransactionSpec{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Amount:     amount,
		Type:       core.TransactionType(req.Type),
		Date:       date,
		Note:       strings.TrimSpace(req.Note),
		ReceiptRef: strings.TrimSpace(req.ReceiptReference),
	}, nil
}

type updateTransactionRequest struct {
	AccountID        *int64  `json:"accountId"`
	CategoryID       *int64  `json:"categoryId"`
	ClearCategory    bool    `json:"clearCategory"`
	Amount           *string `json:"amount"`
	Type             *string `json:"type"`
	Date             *string `json:"date"`
	Note             *string `json:"note"`
	ReceiptReference *string `json:"receiptReference"`
}

func (req updateTransactionRequest) toPatch() (core.TransactionPatch, error) {
	patch := core.TransactionPatch{
		AccountID:     req.AccountID,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		Note:          req.Note,
		ReceiptRef:    req.ReceiptReference,
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			return core.TransactionPatch{}, err
		}
		patch.Amount = &amount
	}
	if req.Type != nil {
		t := core.TransactionType(*req.Type)
		patch.Type = &t
	}
	if req.Date != nil {
		d, err := core.ParseDate(*req.Date)
		if err != nil {
			return core.TransactionPatch{}, err
		}
		patch.Date = &d
	}
	return patch, nil
}

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}
