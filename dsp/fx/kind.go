package fx

// Kind names an effect type.
type Kind string

const (
	KindDelay      Kind = "delay"
	KindDistortion Kind = "distortion"
	KindPhaser     Kind = "phaser"
	KindReverb     Kind = "reverb"
	KindTremolo    Kind = "tremolo"
)

// Setting names.
const (
	DelayTime       = "delayTime"
	Feedback        = "feedback"
	Level           = "level"
	DistortionLevel = "distortionLevel"
	Rate            = "rate"
	Depth           = "depth"
	EffectLevel     = "effectLevel"
	ReverbTime      = "reverbTime"
	ReverbType      = "reverbType"
	ReverbPath      = "reverbPath"
)

// DelayDefaults returns the delay defaults: delayTime 0.5 s, feedback 0.5,
// level 0.5.
func DelayDefaults() Settings {
	return Settings{Num: map[string]float64{
		DelayTime: 0.5,
		Feedback:  0.5,
		Level:     0.5,
	}}
}

// DistortionDefaults returns the distortion defaults. distortionLevel is
// accepted but not applied to any unit.
func DistortionDefaults() Settings {
	return Settings{Num: map[string]float64{
		DistortionLevel: 0.5,
	}}
}

// PhaserDefaults returns the phaser defaults: 8 stages, depth 0.5 (not
// applied), feedback 0.8.
func PhaserDefaults() Settings {
	return Settings{Num: map[string]float64{
		Rate:     8,
		Depth:    0.5,
		Feedback: 0.8,
	}}
}

// ReverbDefaults returns the reverb defaults: effectLevel 0.5, reverbTime
// 0.5 (not applied), reverbType "spring". reverbPath is filled in once the
// impulse response has loaded.
func ReverbDefaults() Settings {
	return Settings{
		Num: map[string]float64{
			EffectLevel: 0.5,
			ReverbTime:  0.5,
		},
		Str: map[string]string{
			ReverbType: "spring",
			ReverbPath: "",
		},
	}
}

// TremoloDefaults returns the tremolo defaults: rate 4 Hz, depth 0.6.
func TremoloDefaults() Settings {
	return Settings{Num: map[string]float64{
		Rate:  4,
		Depth: 0.6,
	}}
}
