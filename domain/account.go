package domain

type User struct {
	BaseEntity `bson:",inline"`
	Name       string            `bson:"name,omitempty"`
	Email      string            `bson:"email,omitempty"`
	Password   EncryptedPassword `bson:"password,omitempty" json:"-"`
	Role       Role              `bson:"role,omitempty"`
	LastLogin  int64             `bson:"lastLogin,omitempty"`
}
