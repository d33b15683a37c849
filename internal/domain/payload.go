package domain

// WakePayload is attached to every scheduled trigger. Message and Sass are
// frozen when the trigger is registered; how the message is eventually
// spoken (voice, rate, cloud key) is read live at fire time.
type WakePayload struct {
	AlarmID string    `json:"alarmId"`
	Label   string    `json:"label"`
	Message string    `json:"message"`
	Sass    SassLevel `json:"sassLevel"`
	Theme   Theme     `json:"soundTheme"`
	Vibrate bool      `json:"vibrate"`
}
