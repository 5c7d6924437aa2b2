package domain

import (
	"fmt"
	"time"

	"github.com/shelterhq/shelter-api/pkg/util"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/x/bsonx/bsoncore"
)

// EncryptedPassword holds a password that is always persisted as an argon2id
// hash. Plaintext assigned to it is hashed on the way into the database;
// values read back are already hashed. String() redacts so the value never
// leaks into responses or logs.
type EncryptedPassword string

func (value EncryptedPassword) MarshalBSONValue() (typ byte, data []byte, err error) {
	valStr := string(value)
	if util.IsArgon2Hash(valStr) {
		return byte(bson.TypeString), bsoncore.AppendString(nil, valStr), nil
	}
	pwdHash, err := util.CreateArgon2Hash(valStr)
	return byte(bson.TypeString), bsoncore.AppendString(nil, pwdHash), err
}

func (value *EncryptedPassword) UnmarshalBSONValue(typ byte, data []byte) error {
	if typ != byte(bson.TypeString) {
		return fmt.Errorf("invalid type %v for EncryptedPassword", bson.Type(typ))
	}

	str, _, ok := bsoncore.ReadString(data)
	if !ok {
		return fmt.Errorf("failed to read bson string")
	}

	*value = EncryptedPassword(str)
	return nil
}

func (value EncryptedPassword) String() string {
	return "*******"
}

func (value EncryptedPassword) Cmp(plainText string) (bool, error) {
	return util.ComparePasswordAndHash(plainText, string(value))
}

type BaseEntity struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CreatedTime int64         `bson:"createdTime,omitempty" json:"createdTime,omitempty"`
	UpdatedTime int64         `bson:"updatedTime,omitempty" json:"updatedTime,omitempty"`
}

func NewBaseEntity() BaseEntity {
	nowInMsec := time.Now().UnixMilli()
	return BaseEntity{
		CreatedTime: nowInMsec,
		UpdatedTime: nowInMsec,
	}
}

// Origin is the best-effort forensic trail of a request: caller IP and
// user-agent. Carried into every audit entry.
type Origin struct {
	IP        string
	UserAgent string
}
