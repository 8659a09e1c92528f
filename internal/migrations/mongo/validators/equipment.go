package validators

import "go.mongodb.org/mongo-driver/bson"

var EquipmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
			"description",
			"category",
			"daily_rate",
			"weekly_rate",
			"monthly_rate",
			"availability",
			"location",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType": "string",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 2000,
			},

			"category": bson.M{
				"enum": []string{"tractor", "harvester", "plow", "seeder", "sprayer", "irrigation", "other"},
			},

			"images": bson.M{
				"bsonType": "array",
			},

			"daily_rate": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"weekly_rate": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"monthly_rate": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"availability": bson.M{
				"bsonType": "bool",
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"features": bson.M{
				"bsonType": "array",
			},

			"rating": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  5,
			},

			"reviews": bson.M{
				"bsonType": "array",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
