// Package classifier turns raw email text into a structured fact sheet.
// Classification is a pure function: no clock, no network, byte-for-byte
// reproducible for the same input.
package classifier

import (
	"regexp"
	"strings"

	"mailtriage/internal/model"
)

var (
	// RFC-5322 风格邮箱地址，取正文中出现的第一个作为发件人
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// 产品编号：两段两位数字 + 一段四位数字，如 08-50-0113
	productCodePattern = regexp.MustCompile(`\b\d{2}-\d{2}-\d{4}\b`)

	// 编号后紧跟的数量 token，如 ", 20000pcs" 或 "，5Kpcs"
	quantityPattern = regexp.MustCompile(`(?i)^[,，]\s*(\d+k?pcs?)`)

	// 无编号时的兜底：Product Name 标签行
	productNamePattern = regexp.MustCompile(`(?im)^[ \t]*Product Name[：:][ \t]*(.+)$`)

	// 订单编号：LC + 6 位数字
	orderIDPattern = regexp.MustCompile(`\bLC\d{6}\b`)

	fieldPatterns = compileFieldPatterns()
)

func compileFieldPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(fieldLabels))
	for field, labels := range fieldLabels {
		patterns[field] = regexp.MustCompile(
			`(?im)^[ \t]*(?:` + strings.Join(labels, "|") + `)[：:][ \t]*(.+)$`)
	}
	return patterns
}

// Classify extracts a FactSheet from one raw email body. Category and Intent
// always come back set; when no rule matches they degrade to general inquiry.
func Classify(raw string) model.FactSheet {
	fs := model.FactSheet{
		Category: model.CategoryGeneralInquiry,
		Intent:   model.IntentGeneralInquiry,
	}

	fs.Subject = extractField("subject", raw)
	fs.SenderName = extractField("name", raw)
	fs.Phone = extractField("phone", raw)
	fs.Company = extractField("company", raw)
	fs.Country = extractField("country", raw)

	if addr := emailPattern.FindString(raw); addr != "" {
		fs.Sender = addr
	}

	lower := strings.ToLower(raw)
	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords) {
			fs.Category = rule.category
			break
		}
	}
	for _, rule := range intentRules {
		if containsAny(lower, rule.keywords) {
			fs.Intent = rule.intent
			break
		}
	}

	fs.Products = extractProducts(raw)
	return fs
}

// ExtractOrderIDs returns the explicit order codes mentioned in the text,
// first-appearance order, duplicates removed. Kept separate from the
// FactSheet; only the interception path needs it.
func ExtractOrderIDs(raw string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, id := range orderIDPattern.FindAllString(raw, -1) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// extractField 标签行抽取，首个命中生效
func extractField(field, raw string) string {
	m := fieldPatterns[field].FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractProducts scans for product codes in first-appearance order
// (duplicates allowed). Each code picks up an adjacent quantity token,
// defaulting to 1pcs. With zero codes a labeled Product Name line yields a
// single name-only reference.
func extractProducts(raw string) []model.ProductRef {
	var refs []model.ProductRef
	for _, loc := range productCodePattern.FindAllStringIndex(raw, -1) {
		ref := model.ProductRef{
			Code:     raw[loc[0]:loc[1]],
			Quantity: "1pcs",
		}
		if m := quantityPattern.FindStringSubmatch(raw[loc[1]:]); m != nil {
			ref.Quantity = m[1]
		}
		refs = append(refs, ref)
	}
	if len(refs) > 0 {
		return refs
	}

	if m := productNamePattern.FindStringSubmatch(raw); m != nil {
		refs = append(refs, model.ProductRef{
			Name:     strings.TrimSpace(m[1]),
			Quantity: "1pcs",
		})
	}
	return refs
}
