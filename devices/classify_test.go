package devices

import "testing"

func TestClassifyAlsa(t *testing.T) {
	cases := []struct {
		id       string
		name     string
		category Category
		hardware bool
	}{
		{"hw:CARD=E2x2,DEV=0", "E2x2 USB Audio", CategoryHardware, true},
		{"plughw:CARD=Generic", "HD-Audio Generic", CategoryHardware, true},
		{"hw:Loopback,0", "Loopback PCM", CategoryLoopback, false},
		{"null", "Discard all samples", CategoryNull, false},
		{"pulse", "PulseAudio sound server", CategoryVirtual, false},
		{"pipewire", "", CategoryVirtual, false},
		{"default", "Default ALSA device", CategoryVirtual, false},
		{"sysdefault", "", CategoryVirtual, false},
		{"dsnoop:CARD=E2x2", "", CategoryVirtual, false},
		{"dmix:CARD=Generic", "", CategoryVirtual, false},
		{"front:CARD=Generic,DEV=0", "", CategoryUnknown, false},
		{"iec958:CARD=Generic", "", CategoryUnknown, false},
	}
	for _, tc := range cases {
		got := Classify(NewDeviceInfo(tc.id, tc.name), "Alsa")
		if got.Category != tc.category || got.IsHardware != tc.hardware {
			t.Errorf("Classify(%q) = %+v, want category %s hardware %t",
				tc.id, got, tc.category, tc.hardware)
		}
	}
}

func TestClassifyNonAlsa(t *testing.T) {
	cases := []struct {
		id       string
		name     string
		backend  string
		category Category
	}{
		{"MOTU UltraLite", "MOTU UltraLite-mk5", "CoreAudio", CategoryHardware},
		{"BlackHole 2ch", "BlackHole 2ch", "CoreAudio", CategoryVirtual},
		{"Soundflower (2ch)", "Soundflower (2ch)", "CoreAudio", CategoryVirtual},
		{"Aggregate Device", "Aggregate Device", "CoreAudio", CategoryVirtual},
		{"Loopback Audio", "Loopback Audio", "CoreAudio", CategoryLoopback},
		{"CABLE Input", "CABLE Input (VB-Audio Virtual Cable)", "Wasapi", CategoryVirtual},
		{"VoiceMeeter Output", "VoiceMeeter Output", "Wasapi", CategoryVirtual},
		{"Speakers", "Speakers (Realtek HD Audio)", "Wasapi", CategoryHardware},
		{"null", "", "Pulse", CategoryNull},
	}
	for _, tc := range cases {
		got := Classify(NewDeviceInfo(tc.id, tc.name), tc.backend)
		if got.Category != tc.category {
			t.Errorf("Classify(%q, %s) = %s, want %s", tc.id, tc.backend, got.Category, tc.category)
		}
		if got.IsHardware != (tc.category == CategoryHardware) {
			t.Errorf("Classify(%q, %s).IsHardware = %t", tc.id, tc.backend, got.IsHardware)
		}
	}
}

func TestClassifyEmptyDevice(t *testing.T) {
	// An empty id on a non-ALSA backend matches no rule and falls through
	// to hardware.
	got := Classify(DeviceInfo{}, "")
	if got.Category != CategoryHardware || !got.IsHardware {
		t.Errorf("Classify(empty) = %+v, want hardware", got)
	}
}

func TestDeviceInfosFilters(t *testing.T) {
	infos := DeviceInfos{
		NewDeviceInfo("hw:CARD=A", "Card A"),
		NewDeviceInfo("pulse", ""),
		NewDeviceInfo("hw:Loopback,0", ""),
		NewDeviceInfo("hw:CARD=B", "Card B"),
	}

	hw := infos.Hardware("Alsa")
	if len(hw) != 2 || hw[0].Device != "hw:CARD=A" || hw[1].Device != "hw:CARD=B" {
		t.Errorf("Hardware() = %v", hw.IDs())
	}
	if virt := infos.Virtual("Alsa"); len(virt) != 1 || virt[0].Device != "pulse" {
		t.Errorf("Virtual() = %v", virt.IDs())
	}
	if loop := infos.ByCategory("Alsa", CategoryLoopback); len(loop) != 1 {
		t.Errorf("ByCategory(loopback) = %v", loop.IDs())
	}
}
