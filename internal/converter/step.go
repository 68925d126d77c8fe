package converter

// Step names a stage of the per-file pipeline.
type Step string

const (
	StepRestore    Step = "restore"
	StepReadAlpha  Step = "read_alpha"
	StepUpload     Step = "upload"
	StepSubmit     Step = "submit"
	StepWait       Step = "wait"
	StepApplyAlpha Step = "apply_alpha"
)

type stepText struct {
	action string
	start  string
	done   string
}

var stepTexts = map[Step]stepText{
	StepRestore:    {action: "restore marker"},
	StepReadAlpha:  {action: "read alpha map", start: "Reading alpha map", done: "Read alpha map"},
	StepUpload:     {action: "upload media", start: "Uploading media", done: "Media uploaded"},
	StepSubmit:     {action: "request convert operation", start: "Requesting convert operation", done: "Convert operation requested"},
	StepWait:       {action: "check convert operation", start: "Checking convert operation", done: "Convert operation completed"},
	StepApplyAlpha: {action: "apply alpha map", start: "Applying alpha map", done: "Applied alpha map"},
}

func (s Step) action() string {
	if text, ok := stepTexts[s]; ok {
		return text.action
	}
	return string(s)
}
