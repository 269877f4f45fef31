package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/reconcile"
	"github.com/shopspring/decimal"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"token":"tok-123"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.Login(context.Background(), "NV001", "secret"); err != nil {
		t.Fatal(err)
	}
	if c.currentToken() != "tok-123" {
		t.Errorf("token = %q", c.currentToken())
	}
}

func TestBearerTokenSent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("abc")
	if _, err := c.FetchProducts(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestSuccessFalseIsTheFailureSignal(t *testing.T) {
	// HTTP 200 with success:false must still fail, with the message verbatim.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"insufficient stock: \"Gạo ST25\" has 10 in stock, requested 11"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.SubmitExportSlip(context.Background(), &reconcile.ExportSlipRequest{})
	if err == nil {
		t.Fatal("expected an error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.Message != `insufficient stock: "Gạo ST25" has 10 in stock, requested 11` {
		t.Errorf("message altered: %q", apiErr.Message)
	}
}

func TestUnauthorizedTearsDownSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":"unauthorized"}`))
	}))
	defer srv.Close()

	hookCalled := false
	c := New(srv.URL, WithUnauthorizedHook(func() { hookCalled = true }))
	c.SetToken("stale")

	_, err := c.FetchProducts(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if !hookCalled {
		t.Error("unauthorized hook not called")
	}
	if c.currentToken() != "" {
		t.Error("token should be cleared after a 401")
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	_, err := c.FetchProducts(context.Background())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("transport failures must not masquerade as API errors")
	}
}

func TestUploadInvoiceDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Fatalf("file part missing: %v", err)
		}
		w.Write([]byte(`{"success":true,"data":{
			"supplier_name":"ABC",
			"invoice_total":"110000",
			"lines":[{"itemName":"Gạo ST25","quantity":4,"unitPrice":"25000","amount":"100000","productId":2,"confidence":0.93}]
		}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.UploadInvoice(context.Background(), "invoice.jpg", []byte("img"))
	if err != nil {
		t.Fatal(err)
	}
	if result.SupplierName != "ABC" {
		t.Errorf("supplier = %q", result.SupplierName)
	}
	if !result.InvoiceTotal.Equal(decimal.NewFromInt(110000)) {
		t.Errorf("invoice total = %s", result.InvoiceTotal)
	}
	if len(result.Lines) != 1 || result.Lines[0].ProductId == nil || *result.Lines[0].ProductId != 2 {
		t.Fatalf("lines = %+v", result.Lines)
	}
}

func TestInvalidEnvelopeIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.FetchProducts(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}
