package migrations

import (
	"database/sql"
)

func mg001InitDB(tx *sql.Tx) (err error) {
	// creates the trigger for updating the modified column on tables.
	_, err = tx.Exec(`
		CREATE OR REPLACE FUNCTION update_modified_column()
		RETURNS TRIGGER AS $$
		BEGIN
			NEW.updated_at = now();
			RETURN NEW;
		END
		$$ language 'plpgsql';
	`)
	return
}

func mg002CreateGamesTable(tx *sql.Tx) (err error) {
	// creates the game snapshot table keyed by owner and game code.
	_, err = tx.Exec(`
		CREATE TABLE games (
			user_id VARCHAR(128) NOT NULL,
			game_code CHAR(4) NOT NULL,
			state JSONB NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now(),
			updated_at TIMESTAMPTZ DEFAULT now(),
			PRIMARY KEY (user_id, game_code)
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		CREATE TRIGGER update_games_modified
			BEFORE UPDATE ON games
			FOR EACH ROW
			EXECUTE PROCEDURE update_modified_column();
	`)
	return
}
