package model

// AlertKind - self-healing 대상 알림 분류
// 알림 이름 문자열은 경계(ParseAlertKind)에서 한 번만 해석하고, 이후에는 이 타입으로 분기
type AlertKind int

const (
	AlertKindUnrecognized AlertKind = iota
	AlertKindHighCPU
	AlertKindHighMemory
	AlertKindLowDisk
)

// ParseAlertKind - alertname을 AlertKind로 변환 (대소문자 구분, 완전 일치)
func ParseAlertKind(name string) AlertKind {
	switch name {
	case "HighCPUUsage", "HighSimulatedCPULoad":
		return AlertKindHighCPU
	case "HighMemoryUsage":
		return AlertKindHighMemory
	case "LowDiskSpace":
		return AlertKindLowDisk
	default:
		return AlertKindUnrecognized
	}
}

func (k AlertKind) String() string {
	switch k {
	case AlertKindHighCPU:
		return "high_cpu"
	case AlertKindHighMemory:
		return "high_memory"
	case AlertKindLowDisk:
		return "low_disk"
	default:
		return "unrecognized"
	}
}

// Suggestion - 외부 생성 서비스가 만든 조치 제안과 신뢰도 (0~1)
type Suggestion struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// HealingOutcome - self-healing 판단 결과
type HealingOutcome struct {
	Result  string `json:"action"`
	Success bool   `json:"success"`
}
