package compliance

import (
	"reflect"
	"strings"
	"testing"

	"github.com/papersumm/papersumm/internal/models"
	"github.com/papersumm/papersumm/internal/templates"
)

func digestVariant(t *testing.T) *templates.Variant {
	t.Helper()

	registry, err := templates.DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}
	variant, err := registry.Get("paper-digest")
	if err != nil {
		t.Fatalf("Get paper-digest: %v", err)
	}
	return variant
}

const compliantText = `**Core Keywords**：大语言模型、缩放定律、预训练。

**1-Sentence Core Summary**：本文系统研究了语言模型性能随参数规模变化的经验规律。

**Problem Background**：大规模训练的算力成本极高。如何在训练前预测模型性能是一个关键难题。

**Method**：作者在多个数量级的模型规模上进行受控实验。随后拟合出参数量与损失之间的幂律关系。

**Experimental Results**：实验表明损失随参数规模呈幂律下降。该规律在多个数据集上保持稳定。

**Significance & Limitations**：这一发现为训练资源分配提供了理论依据。但结论是否适用于新架构仍有待验证。
`

func TestValidateCompliantText(t *testing.T) {
	validator := NewValidator()
	variant := digestVariant(t)

	report := validator.Validate(variant, compliantText)

	if report.Verdict != models.VerdictCompliant {
		t.Fatalf("expected compliant, got %s (violations: %v)", report.Verdict, report.Violations)
	}
	if !report.LanguageOK {
		t.Fatalf("language check failed, fraction %.2f", report.CJKFraction)
	}
	if report.CJKFraction < 0.5 {
		t.Fatalf("expected majority CJK content, got %.2f", report.CJKFraction)
	}
	for _, section := range report.Sections {
		if !section.Present || section.Empty {
			t.Fatalf("section %q not satisfied: %+v", section.Label, section)
		}
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	validator := NewValidator()
	variant := digestVariant(t)

	first := validator.Validate(variant, compliantText)
	second := validator.Validate(variant, compliantText)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ:\n%+v\n%+v", first, second)
	}
}

func TestValidateMissingFinalSectionIsPartial(t *testing.T) {
	validator := NewValidator()
	variant := digestVariant(t)

	idx := strings.Index(compliantText, "**Significance")
	truncated := compliantText[:idx]

	report := validator.Validate(variant, truncated)

	if report.Verdict != models.VerdictPartial {
		t.Fatalf("expected partial, got %s", report.Verdict)
	}
	last := report.Sections[len(report.Sections)-1]
	if last.Present {
		t.Fatalf("final section should be missing")
	}
	if len(report.Violations) == 0 {
		t.Fatalf("expected a violation for the missing section")
	}
}

func TestValidateReorderedSectionReadsAsMissing(t *testing.T) {
	validator := NewValidator()
	variant := digestVariant(t)

	// Move Method ahead of Problem Background.
	reordered := strings.NewReplacer(
		"**Problem Background**", "@@BG@@",
		"**Method**", "**Problem Background**",
	).Replace(compliantText)
	reordered = strings.Replace(reordered, "@@BG@@", "**Method**", 1)

	report := validator.Validate(variant, reordered)

	if report.Verdict == models.VerdictCompliant {
		t.Fatalf("reordered text must not be compliant")
	}
	var methodResult *SectionResult
	for i := range report.Sections {
		if report.Sections[i].Label == "Method" {
			methodResult = &report.Sections[i]
		}
	}
	if methodResult == nil || methodResult.Present {
		t.Fatalf("out-of-order Method section should read as missing: %+v", methodResult)
	}
}

func TestValidateEnglishContentFailsLanguageCheck(t *testing.T) {
	validator := NewValidator()
	variant := digestVariant(t)

	english := `**Core Keywords**: language models, scaling laws, pretraining.
**1-Sentence Core Summary**: The paper studies how loss scales with model size.
**Problem Background**: Training is expensive. Predicting performance ahead of time is hard.
**Method**: The authors run controlled experiments. They fit power laws to the results.
**Experimental Results**: Loss follows a power law. The trend holds across datasets.
**Significance & Limitations**: The findings guide resource allocation. Generality remains open.
`

	report := validator.Validate(variant, english)

	if report.LanguageOK {
		t.Fatalf("expected language check failure, fraction %.2f", report.CJKFraction)
	}
	if report.Verdict != models.VerdictPartial {
		t.Fatalf("structurally complete but wrong-language text should be partial, got %s", report.Verdict)
	}
}

func TestValidateGarbageIsNonCompliant(t *testing.T) {
	validator := NewValidator()
	variant := digestVariant(t)

	report := validator.Validate(variant, "好的，我来帮你总结这篇论文。这篇论文很有意思。")

	if report.Verdict != models.VerdictNonCompliant {
		t.Fatalf("expected non-compliant, got %s", report.Verdict)
	}
}

func TestValidateEmptySectionBody(t *testing.T) {
	validator := NewValidator()
	variant := digestVariant(t)

	hollow := strings.Replace(compliantText,
		"**Method**：作者在多个数量级的模型规模上进行受控实验。随后拟合出参数量与损失之间的幂律关系。",
		"**Method**：", 1)

	report := validator.Validate(variant, hollow)

	if report.Verdict != models.VerdictPartial {
		t.Fatalf("expected partial, got %s", report.Verdict)
	}
	found := false
	for _, violation := range report.Violations {
		if strings.Contains(violation, "no content") && strings.Contains(violation, "Method") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected empty-section violation, got %v", report.Violations)
	}
}

func TestValidateSentenceRangeIsAdvisory(t *testing.T) {
	validator := NewValidator()
	variant := digestVariant(t)

	// Two sentences where the contract asks for exactly one.
	long := strings.Replace(compliantText,
		"**1-Sentence Core Summary**：本文系统研究了语言模型性能随参数规模变化的经验规律。",
		"**1-Sentence Core Summary**：本文研究了缩放规律。结论非常重要。", 1)

	report := validator.Validate(variant, long)

	if report.Verdict != models.VerdictCompliant {
		t.Fatalf("length breach alone should stay compliant, got %s", report.Verdict)
	}
	found := false
	for _, violation := range report.Violations {
		if strings.Contains(violation, "1-Sentence Core Summary") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a sentence-range violation, got %v", report.Violations)
	}
}

func TestCJKFraction(t *testing.T) {
	cases := []struct {
		name string
		text string
		min  float64
		max  float64
	}{
		{"pure chinese", "语言模型研究", 0.99, 1.0},
		{"pure english", "language model research", 0, 0.01},
		{"mixed", "模型很重要 model", 0.4, 0.6},
		{"empty", "   ", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cjkFraction(tc.text)
			if got < tc.min || got > tc.max {
				t.Fatalf("fraction %.2f outside [%.2f, %.2f]", got, tc.min, tc.max)
			}
		})
	}
}

func TestCountSentences(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"第一句。第二句。", 2},
		{"只有一句", 1},
		{"One. Two! Three?", 3},
		{"", 0},
		{"：**", 0},
	}

	for _, tc := range cases {
		if got := countSentences(tc.text); got != tc.want {
			t.Fatalf("countSentences(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}
