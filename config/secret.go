package config

// SecretValue is a string that redacts itself in logs and fmt output.
type SecretValue string

func (s SecretValue) String() string {
	return "*******"
}

func (s SecretValue) Value() string {
	return string(s)
}
