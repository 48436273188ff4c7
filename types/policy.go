package types

// =============================================================================
// 🛂 审核策略
// =============================================================================

// Policy 进程级审核策略（全局开关 + 各分类阈值）。
// 单行存储，带短 TTL 缓存；只通过显式管理操作修改。
type Policy struct {
	// Enabled 全局开关；false 时所有 moderate 调用直接自动批准
	Enabled bool `json:"enabled" yaml:"enabled"`

	// StrictMode 严格模式；同步路径的服务商故障从放行改为拒绝
	StrictMode bool `json:"strict_mode" yaml:"strict_mode"`

	// AutoReject 服务商故障时自动拒绝（与 StrictMode 任一生效）
	AutoReject bool `json:"auto_reject" yaml:"auto_reject"`

	// Thresholds 各分类阈值覆盖；缺失的分类用默认阈值
	Thresholds map[Category]float64 `json:"thresholds" yaml:"thresholds"`
}

// FailClosed 同步路径服务商故障时是否拒绝而非放行
func (p Policy) FailClosed() bool {
	return p.StrictMode || p.AutoReject
}

// PolicyPatch 策略的部分更新；nil 字段表示保持不变。
type PolicyPatch struct {
	Enabled    *bool                `json:"enabled,omitempty"`
	StrictMode *bool                `json:"strict_mode,omitempty"`
	AutoReject *bool                `json:"auto_reject,omitempty"`
	Thresholds map[Category]float64 `json:"thresholds,omitempty"`
}

// Apply 返回应用补丁后的新策略（不修改接收者）。
func (p Policy) Apply(patch PolicyPatch) Policy {
	next := p
	if patch.Enabled != nil {
		next.Enabled = *patch.Enabled
	}
	if patch.StrictMode != nil {
		next.StrictMode = *patch.StrictMode
	}
	if patch.AutoReject != nil {
		next.AutoReject = *patch.AutoReject
	}
	if len(patch.Thresholds) > 0 {
		merged := make(map[Category]float64, len(p.Thresholds)+len(patch.Thresholds))
		for k, v := range p.Thresholds {
			merged[k] = v
		}
		for k, v := range patch.Thresholds {
			merged[k] = v
		}
		next.Thresholds = merged
	}
	return next
}
