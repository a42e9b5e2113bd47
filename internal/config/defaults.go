package config

// Default returns the baseline configuration used before a config file is
// applied on top.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/erecord",
			LogDir:  "~/.local/share/erecord/logs",
		},
		Simplifile: Simplifile{
			BaseURL: "https://api.simplifile.com",
		},
		Submission: Submission{
			TimeoutSeconds: 120,
			RetryMax:       3,
			BackoffSeconds: 2,
			Workers:        4,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Batch:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
