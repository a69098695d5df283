package adviser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"propguard/internal/pkg/convert"
	"propguard/internal/pkg/jsonutil"
)

// 中文说明：
// 模型输出 → 裁决对象。三道闸：抠 JSON → schema 校验 → 严格反序列化。
// 任何一道失败都算一次顾问失败，由网关计入失败升级。

const verdictSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["action"],
  "properties": {
    "action": {"enum": ["BUY", "SELL", "WAIT"]},
    "setup_quality": {"enum": ["HIGH", "MID", "LOW"]},
    "entry": {"type": ["number", "null"]},
    "sl": {"type": ["number", "null"]},
    "tp": {"type": ["number", "null"]},
    "wait_reasons": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["class"],
        "properties": {
          "class": {"enum": ["WAIT_SOFT", "WAIT_RISK", "WAIT_DATA"]},
          "detail": {"type": "string"}
        }
      }
    },
    "rationale": {"type": "string"}
  }
}`

var verdictSchema = jsonschema.MustCompileString("verdict.json", verdictSchemaJSON)

// ParseVerdict 从模型原文中解析裁决。
func ParseVerdict(symbol, raw string) (Verdict, error) {
	block, ok := jsonutil.ExtractObject(raw)
	if !ok {
		return Verdict{}, fmt.Errorf("响应中没有 JSON 对象")
	}
	if !gjson.Valid(block) {
		return Verdict{}, fmt.Errorf("JSON 格式无效")
	}
	parsed := gjson.Parse(block)
	if !parsed.IsObject() {
		return Verdict{}, fmt.Errorf("根节点必须是 JSON 对象")
	}

	doc := coercePriceFields(parsed)
	if err := verdictSchema.Validate(doc); err != nil {
		return Verdict{}, fmt.Errorf("裁决 schema 校验失败: %w", err)
	}

	coerced, err := json.Marshal(doc)
	if err != nil {
		return Verdict{}, err
	}
	var v Verdict
	if err := json.Unmarshal(coerced, &v); err != nil {
		return Verdict{}, err
	}
	v.Symbol = symbol
	v.Action = Action(strings.ToUpper(string(v.Action)))

	if v.Action != ActionWait {
		if v.Entry == nil || v.SL == nil || v.TP == nil {
			return Verdict{}, fmt.Errorf("%s 裁决缺少 entry/sl/tp", v.Action)
		}
	}
	return v, nil
}

// coercePriceFields 在 schema 校验前用 gjson 遍历修正模型常见的输出偏差：
// 小写 action 转大写，写成字符串的价格字段转回数值（空串转 null）。
func coercePriceFields(parsed gjson.Result) map[string]any {
	m, _ := parsed.Value().(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	if action := parsed.Get("action"); action.Type == gjson.String {
		m["action"] = strings.ToUpper(strings.TrimSpace(action.Str))
	}
	for _, key := range []string{"entry", "sl", "tp"} {
		field := parsed.Get(key)
		if field.Type != gjson.String {
			continue
		}
		trimmed := strings.TrimSpace(field.Str)
		if trimmed == "" {
			m[key] = nil
			continue
		}
		// 非数值字符串保持原样，交给 schema 拒绝
		if f := convert.ToFloat64(trimmed); f != 0 || trimmed == "0" {
			m[key] = f
		}
	}
	return m
}
