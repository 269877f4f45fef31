package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"google.golang.org/genai"
)

// The assistant turns a warehouse question into a single SELECT and runs it.
// Anything that is not a plain SELECT is refused before touching the DB.

const assistantPrompt = `You are a SQL assistant for a warehouse inventory database (MySQL).
Tables:
  products(id, name, sku, description, quantity_in_stock, standard_price, is_active, created_at, updated_at)
  import_slips(id, supplier_name, invoice_total, note, created_by, created_at)
  import_slip_details(id, slip_id, product_id, item_name, quantity, unit_price, amount)
  export_slips(id, receiver_name, note, created_by, created_at)
  export_slip_details(id, slip_id, product_id, item_name, quantity, unit_price, amount)
  users(id, employee_id, full_name, email, role_id, is_active)
If the question can be answered from these tables, answer with EXACTLY ONE
MySQL SELECT statement and nothing else (no DDL, no DML, no comments,
limit to 50 rows). Otherwise answer the question directly in plain text.`

type AssistantAnswer struct {
	Answer string                   `json:"answer"`
	Query  string                   `json:"query,omitempty"`
	Rows   []map[string]interface{} `json:"rows,omitempty"`
}

var ErrorAssistantDisabled = errors.New("assistant is not configured")

var bannedKeyword = regexp.MustCompile(`\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|GRANT|REVOKE|OUTFILE|LOAD_FILE)\b`)

// AskAssistant answers a natural-language inventory question by generating
// and executing one read-only query.
func AskAssistant(ctx context.Context, question string) (*AssistantAnswer, error) {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return nil, ErrorAssistantDisabled
	}
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question is required")
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, err
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}

	chatConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(assistantPrompt, genai.RoleUser),
	}
	chat, err := client.Chats.Create(ctx, model, chatConfig, nil)
	if err != nil {
		return nil, err
	}

	resp, err := chat.Send(ctx, &genai.Part{Text: question})
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("assistant returned an empty answer")
	}
	text := resp.Candidates[0].Content.Parts[0].Text

	// Not a query at all: hand the text back as the answer.
	if !looksLikeSelect(text) {
		return &AssistantAnswer{Answer: strings.TrimSpace(text)}, nil
	}

	query, err := sanitizeSelect(text)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var rows []map[string]interface{}
	if err := db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "AskAssistant", "run generated query", query, err)
		return nil, errors.New("generated query failed to run")
	}

	answer := summarizeRows(ctx, chat, rows)
	return &AssistantAnswer{Answer: answer, Query: query, Rows: rows}, nil
}

// summarizeRows asks the model to phrase the result set; on any failure
// the raw rows still go back to the caller.
func summarizeRows(ctx context.Context, chat *genai.Chat, rows []map[string]interface{}) string {
	encoded, err := json.Marshal(rows)
	if err != nil {
		return ""
	}
	resp, err := chat.Send(ctx, &genai.Part{
		Text: "Summarize this query result in one or two sentences for a warehouse manager: " + string(encoded),
	})
	if err != nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
}

// looksLikeSelect reports whether the model answered with SQL rather
// than prose.
func looksLikeSelect(raw string) bool {
	q := strings.TrimSpace(raw)
	q = strings.TrimPrefix(q, "```sql")
	q = strings.TrimPrefix(q, "```")
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(q)), "SELECT")
}

// sanitizeSelect strips markdown fencing and rejects anything but a single
// SELECT statement.
func sanitizeSelect(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	q = strings.TrimPrefix(q, "```sql")
	q = strings.TrimPrefix(q, "```")
	q = strings.TrimSuffix(q, "```")
	q = strings.TrimSpace(q)
	q = strings.TrimSuffix(q, ";")

	if strings.Contains(q, ";") {
		return "", errors.New("assistant produced multiple statements")
	}

	upper := strings.ToUpper(q)
	if !strings.HasPrefix(upper, "SELECT") {
		return "", fmt.Errorf("assistant produced a non-SELECT statement")
	}
	// word-boundary match so column names like updated_at pass
	if bannedKeyword.MatchString(upper) {
		return "", fmt.Errorf("assistant produced a forbidden statement")
	}
	return q, nil
}
