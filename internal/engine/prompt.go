package engine

import (
	"sort"
	"strings"
)

// Summarization prompt templates: data only, no logic.

// DefaultPrompt is used when the caller supplies no instruction.
const DefaultPrompt = `以下のテキストを要約してください。
・重要なポイントを箇条書きで
・簡潔に、かつ内容を維持して
・日本語で出力`

// PromptPresets are the named instructions offered by the CLI and MCP tools.
var PromptPresets = map[string]string{
	"standard": `あなたは優秀な日本語編集者です。
以下の動画の書き起こしを読み、
・概要や知識のジャンルを簡単にまとめる　例：概要：　ジャンル：
・要点をまとめる
・各行ヘッダーにあたる内容は40文字以内の箇条書き、必要があれば構造化して詳細を記述
で出力してください。できる限り内容を維持すること。`,

	"brief": `以下の書き起こしを 3 行以内で要約し、日本語で出力。
各行 30 文字以内。冗長表現は禁止。`,

	"english": `Summarize the transcript below in **exactly five** English bullet points.
Each bullet ≤ 25 words. Keep it concise but informative.`,

	"timeline": `以下書き起こしを時系列に沿って箇条書き。
・見出し行: 〈mm:ss〉 で始める
・200 文字以内で要点`,
}

// PresetNames returns preset keys in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(PromptPresets))
	for k := range PromptPresets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ResolvePrompt picks the instruction for a request: an explicit prompt wins,
// then a known preset, then DefaultPrompt.
func ResolvePrompt(prompt, preset string) string {
	if p := strings.TrimSpace(prompt); p != "" {
		return p
	}
	if p, ok := PromptPresets[strings.ToLower(strings.TrimSpace(preset))]; ok {
		return p
	}
	return DefaultPrompt
}
