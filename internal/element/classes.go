package element

// StandardClasses returns the controller class schemas shipped with the
// core. Site-specific classes are registered on top of these at startup.
func StandardClasses() []ClassInfo {
	return []ClassInfo{
		{
			Name: "DummyMotorController",
			Properties: map[string]PropertyInfo{
				"Velocity": {
					Name:        "Velocity",
					Description: "Default velocity in units/s",
					Kind:        PropDouble,
					Format:      FormatScalar,
					Default:     1.0,
				},
				"Acceleration": {
					Name:        "Acceleration",
					Description: "Default acceleration in units/s^2",
					Kind:        PropDouble,
					Format:      FormatScalar,
					Default:     0.1,
				},
			},
		},
		{
			Name: "NetworkMotorController",
			Properties: map[string]PropertyInfo{
				"Host": {
					Name:        "Host",
					Description: "Controller hostname or IP address",
					Kind:        PropString,
					Format:      FormatScalar,
					// No default: a network controller is unusable without it.
				},
				"Port": {
					Name:        "Port",
					Description: "Controller TCP port",
					Kind:        PropInteger,
					Format:      FormatScalar,
					Default:     5000,
				},
				"Timeout": {
					Name:        "Timeout",
					Description: "Command timeout in seconds",
					Kind:        PropDouble,
					Format:      FormatScalar,
					Default:     3.0,
				},
			},
		},
		{
			Name: "NetworkCounterController",
			Properties: map[string]PropertyInfo{
				"Host": {
					Name:        "Host",
					Description: "Counter hostname or IP address",
					Kind:        PropString,
					Format:      FormatScalar,
				},
				"Channels": {
					Name:        "Channels",
					Description: "Enabled channel numbers",
					Kind:        PropInteger,
					Format:      FormatArray,
					Default:     []any{1},
				},
			},
		},
	}
}
