package prompt

import "strings"

// WithCorrections returns a new rendered prompt carrying a corrective
// follow-up for the given violations. Earlier corrections are preserved so
// repeated retries accumulate feedback.
func (r *Rendered) WithCorrections(violations []string) *Rendered {
	if len(violations) == 0 {
		return r
	}

	corrections := make([][]string, 0, len(r.Corrections)+1)
	corrections = append(corrections, r.Corrections...)
	corrections = append(corrections, violations)

	var sb strings.Builder
	sb.WriteString(r.Text)
	sb.WriteString("\n\n# 修正要求\n")
	sb.WriteString("你上一次的输出不符合要求，存在以下问题：\n")
	for _, violation := range violations {
		sb.WriteString("- ")
		sb.WriteString(violation)
		sb.WriteString("\n")
	}
	sb.WriteString("请重新输出完整内容，并严格遵守原始结构要求。\n")

	return &Rendered{
		TemplateID:  r.TemplateID,
		Text:        sb.String(),
		Corrections: corrections,
	}
}
