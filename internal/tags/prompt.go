package tags

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Locale selects the language of the instruction and prompt text.
type Locale string

const (
	LocaleJA Locale = "ja"
	LocaleEN Locale = "en"
)

type promptSet struct {
	instruction   string
	noTitle       string
	noTags        string
	existingLabel string
	tmpl          *template.Template
}

var prompts = map[Locale]promptSet{
	LocaleJA: {
		instruction: `あなたは技術ブログの記事にタグを付けるアシスタントです。

- 入力として「タイトル」「本文」「既存タグ(あれば)」が与えられます。
- 記事のトピックや技術要素が分かりやすくなるようなタグを日英混在で3〜8個程度提案してください。
- 「Docusaurus」「React」「AWS」「TypeScript」「GitHub Actions」「CI/CD」など、一般的な技術タグを優先してください。
- すでに既存タグに含まれているものは重複しないようにしてください。
- 出力は JSON 配列 (文字列の配列) のみを返してください。余計な文章は一切書かないでください。

例:
["Docusaurus", "React", "AWS", "CloudFront", "EC2"]`,
		noTitle:       "(タイトルなし)",
		noTags:        "既存タグはありません。",
		existingLabel: "既存タグ: ",
		tmpl: template.Must(template.New("ja").Parse(`以下は技術ブログの記事です。内容を読んで、適切なタグを JSON 配列として返してください。

タイトル:
{{.Title}}

本文:
{{.Content}}

既存タグ:
{{.Existing}}`)),
	},
	LocaleEN: {
		instruction: `You tag articles of a technical blog.

- You receive a title, a body and the existing tags, if any.
- Suggest 3 to 8 tags that make the topic and technologies of the article obvious. Mixing Japanese and English tags is fine.
- Prefer common technology labels such as "Docusaurus", "React", "AWS", "TypeScript", "GitHub Actions", "CI/CD".
- Do not repeat tags that are already in the existing tags.
- Respond with a JSON array of strings only. Do not write any other text.

Example:
["Docusaurus", "React", "AWS", "CloudFront", "EC2"]`,
		noTitle:       "(untitled)",
		noTags:        "No existing tags.",
		existingLabel: "Existing tags: ",
		tmpl: template.Must(template.New("en").Parse(`Below is an article from a technical blog. Read it and return suitable tags as a JSON array.

Title:
{{.Title}}

Body:
{{.Content}}

Existing tags:
{{.Existing}}`)),
	},
}

// ParseLocale validates a locale name; "" selects LocaleJA.
func ParseLocale(s string) (Locale, error) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	if l == "" {
		return LocaleJA, nil
	}
	if _, ok := prompts[l]; !ok {
		return "", fmt.Errorf("unsupported prompt locale %q", s)
	}
	return l, nil
}

// Instruction returns the fixed system instruction for locale.
func Instruction(locale Locale) string {
	return promptsFor(locale).instruction
}

// BuildPrompt renders the user prompt for req.
func BuildPrompt(locale Locale, req Request) (string, error) {
	p := promptsFor(locale)

	title := req.Title
	if title == "" {
		title = p.noTitle
	}
	existing := p.noTags
	if len(req.ExistingTags) > 0 {
		existing = p.existingLabel + strings.Join(req.ExistingTags, ", ")
	}

	var buf bytes.Buffer
	err := p.tmpl.Execute(&buf, struct {
		Title    string
		Content  string
		Existing string
	}{title, req.Content, existing})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func promptsFor(locale Locale) promptSet {
	if p, ok := prompts[locale]; ok {
		return p
	}
	return prompts[LocaleJA]
}
