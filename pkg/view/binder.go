package view

// Slot names on the result panel.
const (
	SlotScoreText     = "score_text"
	SlotSuggestion    = "suggestion"
	SlotResumeSkills  = "resume_skills"
	SlotJobSkills     = "job_skills"
	SlotMatchedSkills = "matched_skills"
	SlotCopyButton    = "copy_button"
)

// Slots are the named outputs of the result panel.
type Slots interface {
	SetText(slot, text string)
	SetChips(slot string, chips ChipList)
	SetGauge(width, color string)
}

// Bind writes a view model into the slots.
func Bind(vm ViewModel, slots Slots) {
	slots.SetGauge(vm.GaugeWidth, vm.GaugeColor)
	slots.SetText(SlotScoreText, vm.ScoreText)
	slots.SetChips(SlotResumeSkills, vm.ResumeSkills)
	slots.SetChips(SlotJobSkills, vm.JobSkills)
	slots.SetChips(SlotMatchedSkills, vm.MatchedSkills)
	slots.SetText(SlotSuggestion, vm.Suggestion)
}
