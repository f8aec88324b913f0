// internal/registry/save.go
package registry

// Systemair SAVE register map. Addresses are zero-based protocol offsets
// (vendor PDF address minus one).

// Logical names of registers referenced directly by other packages.
const (
	RegModeStatus          = "mode_status_register"
	RegModeCommand         = "mode_command_register"
	RegManualSpeedCommand  = "manual_mode_command_register"
	RegSupplyAirSetpoint   = "supply_air_setpoint"
	RegCountdownTime       = "countdown_mode_time"
	RegFilterPeriod        = "filter_replacement_period"
	RegFilterReplacedAt    = "filter_replacement_time"
	RegFilterTimeRemaining = "time_to_filter_replacement"
	RegFilterAlarm         = "filter_alarm"
	RegFilterWarning       = "filter_warning_alarm"
	RegSeason              = "summer_winter_operation_1_0"
	RegIAQLevel            = "iaq_level"
	RegRegulationMode      = "supply_air_room_exhaust_reg"
	RegSupplyFanPower      = "supply_air_fan_pwr_fact"
	RegExtractFanPower     = "extractor_fan_pwr_fact"
)

// Operating mode values written to the mode command register.
var CommandModes = map[string]uint16{
	"auto":      1,
	"manual":    2,
	"party":     3,
	"boost":     4,
	"fireplace": 5,
	"away":      6,
	"holiday":   7,
}

// Mode status register values to language-neutral keys.
var StatusModes = map[uint16]string{
	0:  "auto",
	1:  "manual",
	2:  "party",
	3:  "boost",
	4:  "fireplace",
	5:  "away",
	6:  "holiday",
	7:  "cooker_hood",
	8:  "vacuum_cleaner",
	9:  "cdi1",
	10: "cdi2",
	11: "cdi3",
	12: "pressure_guard",
}

// Discrete manual fan speed steps, shared by the manual speed command and
// the free cooling minimum speed registers.
var ManualSpeeds = map[string]uint16{
	"stop":   0,
	"low":    2,
	"normal": 3,
	"high":   4,
}

// NominalFlow maps a unit model to its nominal maximum air flow in m3/h,
// used for estimated flow rate derivation. Zero means unknown; the legacy
// estimate of 3 m3/h per percent applies then.
var NominalFlow = map[string]int{
	"VSR 150/B": 169,
	"VSR 200/B": 284,
	"VSR 300":   368,
	"VSR 400":   615,
	"VSR 500":   609,
	"VSR 700":   870,
	"VTR 100/B": 150,
	"VTR 150/B": 268,
	"VTR 250/B": 307,
	"VTR 275/B": 316,
	"VTR 300":   368,
	"VTR 350/B": 504,
	"VTR 500":   572,
	"VTR 700":   951,
}

// SaveRegisters is the catalogue table for SAVE units behind a Modbus TCP
// gateway. Scale is the only adjustment applied after raw decode.
var SaveRegisters = []Descriptor{
	// Modes and time settings
	{Name: RegSeason, Address: 1038, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "holiday_mode_duration", Address: 1100, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "away_mode_duration", Address: 1101, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "fireplace_mode_duration", Address: 1102, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "refresh_mode_duration", Address: 1103, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "crowded_mode_duration", Address: 1104, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: RegCountdownTime, Address: 1110, Kind: InputRegister, Type: UInt32, Scale: 1},

	// System status
	{Name: RegIAQLevel, Address: 1122, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: RegManualSpeedCommand, Address: 1130, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: RegModeStatus, Address: 1160, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: RegModeCommand, Address: 1161, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},

	// CDI fan speeds
	{Name: "saf_speed_holiday", Address: 1220, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_holiday", Address: 1221, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "saf_speed_cooker_hood", Address: 1222, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_cooker_hood", Address: 1223, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "saf_speed_vacuumcleaner", Address: 1224, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_vacuumcleaner", Address: 1225, Kind: InputRegister, Type: UInt16, Scale: 1},

	// Outdoor compensation
	{Name: "fan_speed_comp_winter", Address: 1251, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "fan_speed_comp_checked", Address: 1252, Kind: HoldingRegister, Type: Int16, Scale: 0.1, Access: ReadWrite},
	{Name: "fan_speed_comp_winter_max_temp", Address: 1253, Kind: HoldingRegister, Type: Int16, Scale: 0.1, Access: ReadWrite},
	{Name: "fan_speed_comp_read", Address: 1254, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "fan_speed_comp_winter_start_temp", Address: 1255, Kind: HoldingRegister, Type: Int16, Scale: 0.1, Access: ReadWrite},
	{Name: "fan_speed_comp_summer_start_temp", Address: 1256, Kind: HoldingRegister, Type: Int16, Scale: 0.1, Access: ReadWrite},
	{Name: "fan_speed_comp_max_temp", Address: 1257, Kind: HoldingRegister, Type: Int16, Scale: 0.1, Access: ReadWrite},
	{Name: "fan_speed_comp_summer", Address: 1258, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},

	// Fan level status
	{Name: "saf_speed_low", Address: 1302, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_low", Address: 1303, Kind: InputRegister, Type: UInt16, Scale: 1},

	// Permissions
	{Name: "fan_manual_stop_allowed_register", Address: 1352, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},

	// Fan RPM limits
	{Name: "saf_speed_minimum_rpm", Address: 1410, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_minimum_rpm", Address: 1411, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "saf_speed_low_rpm", Address: 1412, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_low_rpm", Address: 1413, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "saf_speed_normal", Address: 1414, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_normal", Address: 1415, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "saf_speed_high", Address: 1416, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_high", Address: 1417, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "saf_speed_maximum", Address: 1418, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_maximum", Address: 1419, Kind: HoldingRegister, Type: UInt16, Scale: 1},

	// Temperature settings
	{Name: RegSupplyAirSetpoint, Address: 2000, Kind: HoldingRegister, Type: UInt16, Scale: 0.1, Access: ReadWrite},
	{Name: "exhaust_air_sp", Address: 2012, Kind: HoldingRegister, Type: UInt16, Scale: 0.1, Access: ReadWrite},
	{Name: "exhaust_air_min_sp", Address: 2020, Kind: HoldingRegister, Type: UInt16, Scale: 0.1, Access: ReadWrite},
	{Name: "exhaust_air_max_sp", Address: 2021, Kind: HoldingRegister, Type: UInt16, Scale: 0.1, Access: ReadWrite},
	{Name: RegRegulationMode, Address: 2030, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},

	// Heating and humidity
	{Name: "triac_after_manual_override", Address: 2148, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "moisture_extraction_sp", Address: 2202, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "calculated_moisture_extraction", Address: 2210, Kind: HoldingRegister, Type: UInt16, Scale: 1},
	{Name: "calculated_moisture_intake", Address: 2211, Kind: HoldingRegister, Type: UInt16, Scale: 1},

	// Eco
	{Name: "eco_heat_offset", Address: 2503, Kind: HoldingRegister, Type: UInt16, Scale: 0.1, Access: ReadWrite},
	{Name: "eco_mode", Address: 2504, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "eco_function_active", Address: 2505, Kind: InputRegister, Type: Bool, Scale: 1},

	// Free cooling
	{Name: "free_cooling_enable", Address: 4100, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "free_cooling_daytime_min_temp", Address: 4101, Kind: HoldingRegister, Type: Int16, Scale: 0.1, Access: ReadWrite},
	{Name: "free_cooling_night_high_limit", Address: 4102, Kind: HoldingRegister, Type: Int16, Scale: 0.1, Access: ReadWrite},
	{Name: "free_cooling_night_low_limit", Address: 4103, Kind: HoldingRegister, Type: Int16, Scale: 0.1, Access: ReadWrite},
	{Name: "free_cooling_room_cancel_temp", Address: 4104, Kind: HoldingRegister, Type: Int16, Scale: 0.1, Access: ReadWrite},
	{Name: "free_cooling_start_time_h", Address: 4105, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "free_cooling_start_time_m", Address: 4106, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "free_cooling_end_time_h", Address: 4107, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "free_cooling_end_time_m", Address: 4108, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "free_cooling_active", Address: 4110, Kind: InputRegister, Type: Bool, Scale: 1},
	{Name: "free_cooling_min_speed_saf", Address: 4111, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: "free_cooling_min_speed_eaf", Address: 4112, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},

	// Filter block. The replacement timestamp is the write half of the
	// filter reset behavior, so it lives in holding space.
	{Name: RegFilterPeriod, Address: 7000, Kind: HoldingRegister, Type: UInt16, Scale: 1, Access: ReadWrite},
	{Name: RegFilterReplacedAt, Address: 7001, Kind: HoldingRegister, Type: UInt32, Scale: 1, Access: ReadWrite},
	{Name: RegFilterTimeRemaining, Address: 7004, Kind: InputRegister, Type: UInt32, Scale: 1},

	// Sensors
	{Name: "digital_ui_1", Address: 12020, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "outdoor_temperature", Address: 12101, Kind: InputRegister, Type: Int16, Scale: 0.1},
	{Name: "supply_temperature", Address: 12102, Kind: InputRegister, Type: Int16, Scale: 0.1},
	{Name: "efficiency_temperature", Address: 12106, Kind: InputRegister, Type: Int16, Scale: 0.1},
	{Name: "overheat_temperature", Address: 12107, Kind: InputRegister, Type: Int16, Scale: 0.1},
	{Name: "relative_moisture_extraction", Address: 12135, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "saf_speed_rpm", Address: 12400, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "eaf_speed_rpm", Address: 12401, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "extract_temperature", Address: 12543, Kind: InputRegister, Type: Int16, Scale: 0.1},

	// Outputs and alarms
	{Name: RegSupplyFanPower, Address: 14000, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: RegExtractFanPower, Address: 14001, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "heat_recovery", Address: 14102, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "triac_control_signal", Address: 14380, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: RegFilterAlarm, Address: 15141, Kind: InputRegister, Type: Bool, Scale: 1},
	{Name: "supply_air_temp_low_alarm", Address: 15176, Kind: InputRegister, Type: Bool, Scale: 1},
	{Name: RegFilterWarning, Address: 15543, Kind: InputRegister, Type: Bool, Scale: 1},
	{Name: "filter_warning_alarm_delay_counter", Address: 15548, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "a_alarm", Address: 15900, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "b_alarm", Address: 15901, Kind: InputRegister, Type: UInt16, Scale: 1},
	{Name: "c_alarm", Address: 15902, Kind: InputRegister, Type: UInt16, Scale: 1},
}

// Save builds the catalogue for a SAVE unit.
func Save() (*Catalogue, error) {
	return NewCatalogue(SaveRegisters)
}
