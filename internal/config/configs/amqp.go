package configs

// Amqp holds configuration for the RabbitMQ notification publisher. When URL
// is empty the publisher is disabled and notifications are stored in-app
// only.
type Amqp struct {
	URL      string `env:"URL" envDefault:""`
	Exchange string `env:"EXCHANGE" envDefault:"notifications"`
}
