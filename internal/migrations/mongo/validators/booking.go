package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"equipment_id",
			"renter_id",
			"owner_id",
			"start_date",
			"end_date",
			"total_amount",
			"status",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"equipment_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"renter_id": bson.M{
				"bsonType": "string",
			},

			"owner_id": bson.M{
				"bsonType": "string",
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"total_amount": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"pending", "approved", "rejected", "in-progress", "completed", "canceled"},
			},

			"payment_status": bson.M{
				"enum": []string{"pending", "paid", "refunded", "failed"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
