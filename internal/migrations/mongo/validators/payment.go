package validators

import "go.mongodb.org/mongo-driver/bson"

var PaymentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"payer_id",
			"recipient_id",
			"amount",
			"method",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"payer_id": bson.M{
				"bsonType": "string",
			},

			"recipient_id": bson.M{
				"bsonType": "string",
			},

			"amount": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"currency": bson.M{
				"bsonType": "string",
			},

			"method": bson.M{
				"enum": []string{"razorpay", "paypal", "direct", "other"},
			},

			"status": bson.M{
				"enum": []string{"pending", "completed", "failed", "refunded"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
